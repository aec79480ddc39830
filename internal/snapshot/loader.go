// Package snapshot loads program models from disk. Three encodings are
// accepted: plain JSON, zstd-compressed JSON, and SCIP protobuf indexes
// paired with a TOML project manifest. Every load produces an indexed
// model.Program carrying a content-derived snapshot ID.
package snapshot

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"seal/internal/errors"
	"seal/internal/model"
)

// Snapshot encodings. FormatAuto picks by file extension.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatZstd = "zstd"
	FormatSCIP = "scip"
)

// DefaultManifestName is the manifest filename looked up next to a SCIP
// index when no explicit manifest path is configured.
const DefaultManifestName = "program.toml"

// Load reads, decodes, and indexes a program snapshot. manifestPath is only
// consulted for SCIP indexes; empty means a program.toml sibling of path.
// format is one of the Format constants; empty counts as FormatAuto.
func Load(path, manifestPath, format string) (*model.Program, error) {
	if format == "" || format == FormatAuto {
		var err error
		format, err = DetectFormat(path)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(
				errors.SnapshotMissing,
				fmt.Sprintf("program snapshot not found at %s", path),
				err,
			)
		}
		return nil, errors.New(
			errors.InternalError,
			fmt.Sprintf("failed to read program snapshot %s", path),
			err,
		)
	}

	var prog *model.Program
	switch format {
	case FormatJSON:
		prog, err = decodeJSON(path, data)
		if err != nil {
			return nil, err
		}
		prog.SnapshotID = snapshotID(FormatJSON, data)

	case FormatZstd:
		raw, derr := decompress(path, data)
		if derr != nil {
			return nil, derr
		}
		prog, err = decodeJSON(path, raw)
		if err != nil {
			return nil, err
		}
		// Compressed and plain encodings of the same content share an ID.
		prog.SnapshotID = snapshotID(FormatJSON, raw)

	case FormatSCIP:
		if manifestPath == "" {
			manifestPath = filepath.Join(filepath.Dir(path), DefaultManifestName)
		}
		man, merr := LoadManifest(manifestPath)
		if merr != nil {
			return nil, merr
		}
		manData, merr := os.ReadFile(manifestPath)
		if merr != nil {
			return nil, errors.New(errors.ManifestInvalid, fmt.Sprintf("failed to read project manifest %s", manifestPath), merr)
		}
		prog, err = loadSCIP(data, man)
		if err != nil {
			return nil, err
		}
		prog.SnapshotID = snapshotID(FormatSCIP, data, manData)

	default:
		return nil, errors.New(
			errors.SnapshotInvalid,
			fmt.Sprintf("unknown snapshot format %q", format),
			nil,
		)
	}

	if err := prog.BuildIndexes(); err != nil {
		return nil, errors.New(
			errors.SnapshotInvalid,
			fmt.Sprintf("program snapshot %s is not a valid model", path),
			err,
		)
	}
	return prog, nil
}

// DetectFormat picks a snapshot encoding from the file extension.
func DetectFormat(path string) (string, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".zst"):
		return FormatZstd, nil
	case strings.HasSuffix(name, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(name, ".scip"):
		return FormatSCIP, nil
	}
	return "", errors.New(
		errors.SnapshotInvalid,
		fmt.Sprintf("cannot infer snapshot format from %s, expected .json, .json.zst, or .scip", path),
		nil,
	)
}

// PackStats reports what a Pack call read and wrote.
type PackStats struct {
	SourceFormat string `json:"sourceFormat"`
	TargetFormat string `json:"targetFormat"`
	BytesIn      int    `json:"bytesIn"`
	BytesOut     int    `json:"bytesOut"`
	SnapshotID   string `json:"snapshotId"`
}

// Pack converts a snapshot between encodings, validating the content on the
// way through. JSON and zstd sources keep their exact model bytes, so the
// snapshot ID survives the conversion. SCIP sources are materialized into
// the JSON encoding.
func Pack(srcPath, dstPath, manifestPath string) (PackStats, error) {
	srcFormat, err := DetectFormat(srcPath)
	if err != nil {
		return PackStats{}, err
	}
	dstFormat, err := DetectFormat(dstPath)
	if err != nil {
		return PackStats{}, err
	}
	if dstFormat == FormatSCIP {
		return PackStats{}, errors.New(errors.SnapshotInvalid, "packing into the SCIP encoding is not supported", nil)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return PackStats{}, errors.New(errors.SnapshotMissing, fmt.Sprintf("program snapshot not found at %s", srcPath), err)
		}
		return PackStats{}, errors.New(errors.InternalError, fmt.Sprintf("failed to read program snapshot %s", srcPath), err)
	}
	stats := PackStats{SourceFormat: srcFormat, TargetFormat: dstFormat, BytesIn: len(data)}

	var raw []byte
	switch srcFormat {
	case FormatJSON:
		raw = data
	case FormatZstd:
		raw, err = decompress(srcPath, data)
		if err != nil {
			return PackStats{}, err
		}
	case FormatSCIP:
		prog, lerr := Load(srcPath, manifestPath, FormatSCIP)
		if lerr != nil {
			return PackStats{}, lerr
		}
		raw, err = json.MarshalIndent(prog, "", "  ")
		if err != nil {
			return PackStats{}, errors.New(errors.InternalError, "failed to encode program snapshot", err)
		}
	}

	// Validate content before writing anything.
	prog, err := decodeJSON(srcPath, raw)
	if err != nil {
		return PackStats{}, err
	}
	if err := prog.BuildIndexes(); err != nil {
		return PackStats{}, errors.New(errors.SnapshotInvalid, fmt.Sprintf("program snapshot %s is not a valid model", srcPath), err)
	}
	stats.SnapshotID = snapshotID(FormatJSON, raw)

	out := raw
	if dstFormat == FormatZstd {
		out, err = compress(raw)
		if err != nil {
			return PackStats{}, err
		}
	}
	if err := os.WriteFile(dstPath, out, 0o644); err != nil {
		return PackStats{}, errors.New(errors.InternalError, fmt.Sprintf("failed to write packed snapshot %s", dstPath), err)
	}
	stats.BytesOut = len(out)
	return stats, nil
}

func decodeJSON(path string, data []byte) (*model.Program, error) {
	var prog model.Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, errors.New(
			errors.SnapshotInvalid,
			fmt.Sprintf("failed to decode program snapshot %s", path),
			err,
		)
	}
	return &prog, nil
}

func decompress(path string, data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to initialize zstd decoder", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.New(
			errors.SnapshotInvalid,
			fmt.Sprintf("failed to decompress program snapshot %s", path),
			err,
		)
	}
	return raw, nil
}

func compress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to initialize zstd encoder", err)
	}
	out := enc.EncodeAll(raw, nil)
	if err := enc.Close(); err != nil {
		return nil, errors.New(errors.InternalError, "failed to finish zstd encoding", err)
	}
	return out, nil
}

// snapshotID derives the content identity of a snapshot: a sha256 over the
// format tag and the decoded content bytes.
func snapshotID(format string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	for _, p := range parts {
		h.Write(p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

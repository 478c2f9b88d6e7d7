// Package bake generates a rectangular region of terrain offline and stores
// its LOD meshes in a compressed archive, plus a heightmap preview image.
package bake

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"terrainstream/internal/meshing"
	"terrainstream/internal/world"

	"github.com/klauspost/compress/zstd"
)

const ArchiveVersion = 1

// Header is written as a JSON line ahead of the gob body so the archive can be
// identified with zstdcat | head -1.
type Header struct {
	Version     int              `json:"version"`
	Seed        int64            `json:"seed"`
	ChunkSize   float64          `json:"chunk_size"`
	Resolutions []int            `json:"lod_resolutions"`
	Min         world.ChunkCoord `json:"min"`
	Max         world.ChunkCoord `json:"max"`
	Chunks      int              `json:"chunks"`
}

type Archive struct {
	Header Header
	Sets   []meshing.ChunkLODSet
}

func WriteArchive(path string, a Archive) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, enc.Close()) }()

	bw := bufio.NewWriterSize(enc, 256*1024)

	a.Header.Version = ArchiveVersion
	a.Header.Chunks = len(a.Sets)
	hb, err := json.Marshal(a.Header)
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&a); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return bw.Flush()
}

func ReadArchive(path string) (Archive, error) {
	var a Archive
	f, err := os.Open(path)
	if err != nil {
		return a, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return a, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return a, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return a, fmt.Errorf("parse header: %w", err)
	}
	if h.Version != ArchiveVersion {
		return a, fmt.Errorf("unsupported archive version %d", h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&a); err != nil {
		return a, fmt.Errorf("gob decode: %w", err)
	}
	return a, nil
}

package vecindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kb2232/insightdex/internal/fileutil"
)

const (
	vectorFileName   = "index.vec"
	metadataFileName = "metadata.json"

	vectorFileMagic = uint32(0x49445856) // "IDXV"
)

type metadataFile struct {
	Dimensions int     `json:"dimensions"`
	Entries    []Entry `json:"entries"`
}

// save writes the vector file and the metadata side-file. Both writes are
// atomic renames; callers hold the write lock.
func (idx *Index) save() error {
	if err := os.MkdirAll(idx.path, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	var buf bytes.Buffer
	header := []uint32{vectorFileMagic, uint32(idx.dim), uint32(len(idx.vectors))}
	for _, v := range header {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to encode vector header: %w", err)
		}
	}
	for _, vec := range idx.vectors {
		if err := binary.Write(&buf, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("failed to encode vectors: %w", err)
		}
	}

	vecPath := filepath.Join(idx.path, vectorFileName)
	if err := fileutil.WriteFileAtomic(vecPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write vector file: %w", err)
	}

	meta := metadataFile{
		Dimensions: idx.dim,
		Entries:    idx.entries,
	}
	metaPath := filepath.Join(idx.path, metadataFileName)
	if err := fileutil.WriteJSONAtomic(metaPath, meta, false); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// load reads the vector/metadata pair from disk. A missing pair means a
// fresh index. A count mismatch between the two files loads read-only:
// entries past the shorter file are dropped and writes are blocked.
func (idx *Index) load() error {
	vecPath := filepath.Join(idx.path, vectorFileName)
	metaPath := filepath.Join(idx.path, metadataFileName)

	vecExists := fileutil.FileExists(vecPath)
	metaExists := fileutil.FileExists(metaPath)

	if !vecExists && !metaExists {
		return nil
	}
	if vecExists != metaExists {
		idx.inconsistent = true
		if metaExists {
			var meta metadataFile
			if err := fileutil.ReadJSON(metaPath, &meta); err != nil {
				return fmt.Errorf("failed to read metadata file: %w", err)
			}
			idx.entries = meta.Entries
		}
		return nil
	}

	var meta metadataFile
	if err := fileutil.ReadJSON(metaPath, &meta); err != nil {
		return fmt.Errorf("failed to read metadata file: %w", err)
	}

	vectors, dim, err := readVectorFile(vecPath)
	if err != nil {
		return err
	}

	if dim != idx.dim {
		return fmt.Errorf("index at %s has %d dimensions, embedder produces %d (rebuild required)",
			idx.path, dim, idx.dim)
	}

	idx.entries = meta.Entries
	idx.vectors = vectors

	if len(vectors) != len(meta.Entries) {
		idx.inconsistent = true
	}

	return nil
}

func readVectorFile(path string) ([][]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read vector file: %w", err)
	}

	r := bytes.NewReader(data)
	var magic, dim32, count32 uint32
	for _, dst := range []*uint32{&magic, &dim32, &count32} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, 0, fmt.Errorf("failed to decode vector header: %w", err)
		}
	}
	if magic != vectorFileMagic {
		return nil, 0, fmt.Errorf("not a vector index file: %s", path)
	}

	dim := int(dim32)
	count := int(count32)
	if dim <= 0 {
		return nil, 0, fmt.Errorf("invalid vector dimension: %d", dim)
	}

	expected := count * dim * 4
	if r.Len() != expected {
		return nil, 0, fmt.Errorf("vector file truncated: have %d bytes, want %d", r.Len(), expected)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, 0, fmt.Errorf("failed to decode vector %d: %w", i, err)
		}
		vectors[i] = vec
	}

	return vectors, dim, nil
}

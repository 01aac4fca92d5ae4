package keypoints

import (
	"math/bits"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	uts "github.com/PNisargkumar/Project-drone/utils"
)

// IndexingConfig stores the parameters of the multi-probe LSH index used to
// search binary descriptors. KeySize bits of a descriptor form a bucket key;
// MultiProbeLevel is the maximum number of key bits flipped when probing
// neighboring buckets.
type IndexingConfig struct {
	TableNumber     int `json:"table_number"`
	KeySize         int `json:"key_size"`
	MultiProbeLevel int `json:"multi_probe_level"`
}

// NewIndexingConfig returns the default indexing parameters.
func NewIndexingConfig() *IndexingConfig {
	return &IndexingConfig{
		TableNumber:     6,
		KeySize:         12,
		MultiProbeLevel: 1,
	}
}

// Validate ensures all parts of the IndexingConfig are valid.
func (config *IndexingConfig) Validate(path string) error {
	if config.TableNumber < 1 {
		return utils.NewConfigValidationError(path, errors.New("table_number should be >= 1"))
	}
	if config.KeySize < 1 || config.KeySize > 32 {
		return utils.NewConfigValidationError(path, errors.New("key_size should be between 1 and 32"))
	}
	if config.MultiProbeLevel < 0 {
		return utils.NewConfigValidationError(path, errors.New("multi_probe_level should be >= 0"))
	}
	return nil
}

// hashTable is one locality sensitive hash table: a random subset of
// descriptor bit positions and buckets of descriptor indices keyed by the
// value of those bits.
type hashTable struct {
	bitPositions []int
	buckets      map[uint32][]int
}

// LSHIndex hashes a set of binary descriptors into several hash tables so
// that approximate nearest neighbors can be found without scanning the
// whole set.
type LSHIndex struct {
	descs  Descriptors
	tables []hashTable
	probes []uint32
}

// Neighbor is a candidate match in the indexed descriptor set.
type Neighbor struct {
	Index    int
	Distance int
}

// NewLSHIndex hashes descs into cfg.TableNumber tables. The bit positions of
// each table are drawn from a fixed seed so that indexing is deterministic.
func NewLSHIndex(descs Descriptors, cfg *IndexingConfig) (*LSHIndex, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	nBits := 0
	if len(descs) > 0 {
		nBits = len(descs[0]) * 64
	}
	if nBits > 0 && cfg.KeySize > nBits {
		return nil, errors.Errorf("key_size %d exceeds descriptor length %d bits", cfg.KeySize, nBits)
	}
	//nolint:gosec
	r := rand.New(rand.NewSource(1))
	index := &LSHIndex{
		descs:  descs,
		tables: make([]hashTable, 0, cfg.TableNumber),
		probes: probeMasks(cfg.KeySize, cfg.MultiProbeLevel),
	}
	for t := 0; t < cfg.TableNumber; t++ {
		table := hashTable{buckets: make(map[uint32][]int)}
		if nBits > 0 {
			table.bitPositions = r.Perm(nBits)[:cfg.KeySize]
		}
		for i, desc := range descs {
			key := hashKey(desc, table.bitPositions)
			table.buckets[key] = append(table.buckets[key], i)
		}
		index.tables = append(index.tables, table)
	}
	return index, nil
}

// probeMasks returns every key perturbation with at most level bits flipped,
// the zero mask included.
func probeMasks(keySize, level int) []uint32 {
	masks := []uint32{0}
	current := []uint32{0}
	for l := 0; l < level; l++ {
		next := make([]uint32, 0)
		for _, m := range current {
			start := 0
			if m != 0 {
				start = bits.Len32(m)
			}
			for b := start; b < keySize; b++ {
				next = append(next, m|1<<b)
			}
		}
		masks = append(masks, next...)
		current = next
	}
	return masks
}

// hashKey packs the selected descriptor bits into a bucket key.
func hashKey(desc Descriptor, bitPositions []int) uint32 {
	var key uint32
	for i, pos := range bitPositions {
		word := pos / 64
		bit := uint(pos % 64)
		if word < len(desc) && (desc[word]>>bit)&1 == 1 {
			key |= 1 << uint(i)
		}
	}
	return key
}

// KNearestNeighbors returns up to k neighbors of desc in the indexed set,
// ordered by increasing Hamming distance. Only descriptors sharing a probed
// bucket in at least one table are considered, so fewer than k neighbors can
// be returned even when the indexed set is larger.
func (index *LSHIndex) KNearestNeighbors(desc Descriptor, k int) ([]Neighbor, error) {
	seen := make(map[int]bool)
	candidates := make([]int, 0)
	for _, table := range index.tables {
		key := hashKey(desc, table.bitPositions)
		for _, mask := range index.probes {
			for _, idx := range table.buckets[key^mask] {
				if !seen[idx] {
					seen[idx] = true
					candidates = append(candidates, idx)
				}
			}
		}
	}
	neighbors := make([]Neighbor, 0, len(candidates))
	for _, idx := range candidates {
		d, err := uts.HammingDistance(index.descs[idx], desc)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, Neighbor{Index: idx, Distance: d})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Index < neighbors[j].Index
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

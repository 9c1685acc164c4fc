package machine

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Config describes the initial machine image handed to Create: register
// file, CSR reset values, and memory ranges. It is the language-neutral
// analogue of rvgo/fast.VMState's JSON shape, generalized to the full
// scalar set in this module's State, and is loaded the way
// rvgo/cmd/run.go loads its input state (there via the upstream
// jsonutil.LoadJSON helper, reimplemented here locally — see DESIGN.md).
type Config struct {
	X        [32]uint64      `json:"x"`
	PC       uint64          `json:"pc"`
	Mstatus  uint64          `json:"mstatus"`
	Mtvec    uint64          `json:"mtvec"`
	Misa     uint64          `json:"misa"`
	Satp     uint64          `json:"satp"`
	Ranges   []MemoryRangeConfig `json:"ranges"`
}

// MemoryRangeConfig describes one memory-kind PMA to be created at
// machine construction time. Start and Length must both be multiples of
// 8: every PMA byte is Merkle-addressed at word granularity
// (access/logging.go, emulator.Machine.seedTree), which assumes each
// range begins and ends on a word boundary.
type MemoryRangeConfig struct {
	Start    uint64        `json:"start"`
	Length   uint64        `json:"length"`
	Image    hexutil.Bytes `json:"image,omitempty"`
	ReadOnly bool          `json:"read_only,omitempty"`
}

// RuntimeConfig holds settings that affect execution but not the
// committed state image: concurrency limits, host paths, and similar.
// It is deliberately sparse: everything that affects the Merkle root
// belongs in Config instead.
type RuntimeConfig struct {
	// ConcurrencyUpdateMerkleTree is decoded from JSON and kept on the
	// Machine, but nothing in this module reads it: the Merkle tree is
	// always built on a single goroutine.
	ConcurrencyUpdateMerkleTree int `json:"concurrency_update_merkle_tree,omitempty"`
}

// LoadConfig reads and decodes a Config from a JSON file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as indented JSON, the way rvgo/cmd/run.go
// writes its output state after every invocation so a later invocation
// can resume from it.
func SaveConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// NewFromConfig builds a State from a Config: register file and selected
// CSRs are copied verbatim, and each memory range becomes a
// PmaKindMemory PMA entry, optionally pre-loaded from Image.
func NewFromConfig(cfg *Config) *State {
	s := New()
	s.X = cfg.X
	s.PC = cfg.PC
	s.Mstatus = cfg.Mstatus
	s.Mtvec = cfg.Mtvec
	s.Misa = cfg.Misa
	s.Satp = cfg.Satp

	for _, r := range cfg.Ranges {
		data := make([]byte, r.Length)
		copy(data, r.Image)
		s.Pmas = append(s.Pmas, PmaEntry{
			Start:  r.Start,
			Length: r.Length,
			Kind:   PmaKindMemory,
			Flags:  PmaFlags{Readable: true, Writable: !r.ReadOnly, Executable: true},
			Data:   data,
		})
	}
	return s
}

// ToConfig captures s's register file, PC, the CSRs Config carries
// (mstatus, mtvec, misa, satp), and every memory-kind PMA's current
// bytes as a Config that NewFromConfig can reload, so a later CLI
// invocation picks up where this one left off (rvgo/cmd/run.go's
// load-state/write-state-back round trip). All other scalars (mcycle,
// minstret, the remaining CSRs, ilrsc, iflags, and the device latches)
// are not saved and come back at their New defaults on reload. The
// CMIO receive buffer PMA is skipped: emulator.Create always appends a
// fresh one of its own.
func (s *State) ToConfig() *Config {
	cfg := &Config{
		X:       s.X,
		PC:      s.PC,
		Mstatus: s.Mstatus,
		Mtvec:   s.Mtvec,
		Misa:    s.Misa,
		Satp:    s.Satp,
	}
	for _, pma := range s.Pmas {
		if pma.Kind != PmaKindMemory || pma.Start == CmioRxBufferStart {
			continue
		}
		cfg.Ranges = append(cfg.Ranges, MemoryRangeConfig{
			Start:    pma.Start,
			Length:   pma.Length,
			Image:    append([]byte(nil), pma.Data...),
			ReadOnly: !pma.Flags.Writable,
		})
	}
	return cfg
}

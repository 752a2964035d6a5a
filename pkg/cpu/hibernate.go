package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// humanReadableState is the JSON-serializable snapshot of CPU control state.
type humanReadableState struct {
	A          uint16 `json:"a"`
	D          uint16 `json:"d"`
	PC         uint16 `json:"pc"`
	Halted     bool   `json:"halted"`
	Steps      uint64 `json:"steps"`
	ProgramLen int    `json:"program_len"`
}

// HibernateToBytes serialises the complete machine into an in-memory ZIP
// archive: cpu_state.json plus little-endian rom.bin and ram.bin.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := humanReadableState{
		A:          c.A,
		D:          c.D,
		PC:         c.PC,
		Halted:     c.Halted,
		Steps:      c.Steps,
		ProgramLen: c.programLen,
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}

	// only the loaded part of ROM is worth storing
	if err := writeZipEntry(zw, "rom.bin", uint16SliceToLE(c.ROM[:c.programLen])); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "ram.bin", uint16SliceToLE(c.RAM[:])); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes replaces the machine with a snapshot produced by
// HibernateToBytes.
func (c *CPU) RestoreFromBytes(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	fileMap := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json")
	if err != nil {
		return err
	}
	var state humanReadableState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	if state.ProgramLen < 0 || state.ProgramLen > ROMSize {
		return fmt.Errorf("snapshot program length %d out of range", state.ProgramLen)
	}

	rom, err := readZipEntry(fileMap, "rom.bin")
	if err != nil {
		return err
	}
	if len(rom) != state.ProgramLen*2 {
		return fmt.Errorf("rom.bin has %d bytes, want %d", len(rom), state.ProgramLen*2)
	}
	ram, err := readZipEntry(fileMap, "ram.bin")
	if err != nil {
		return err
	}

	c.ROM = [ROMSize]uint16{}
	leToUint16Slice(rom, c.ROM[:state.ProgramLen])
	c.RAM = [RAMSize]uint16{}
	leToUint16Slice(ram, c.RAM[:])
	c.programLen = state.ProgramLen
	c.A, c.D, c.PC = state.A, state.D, state.PC
	c.Halted = state.Halted
	c.Steps = state.Steps
	return nil
}

// HibernateToFile writes the hibernation archive to the given file path.
func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a hibernation archive from the given file path and
// restores the machine.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

// ── helpers ────────────────────────────────────────────────────────────────

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func uint16SliceToLE(src []uint16) []byte {
	out := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func leToUint16Slice(src []byte, dst []uint16) {
	for i := range dst {
		if i*2+1 < len(src) {
			dst[i] = binary.LittleEndian.Uint16(src[i*2:])
		}
	}
}

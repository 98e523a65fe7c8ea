package shipments

import (
	"fmt"
	"path/filepath"
	"time"

	"courier-bridge-service/workers/shipments/processors"
	"github.com/spf13/afero"
)

// LabelStore writes label and pickup-list PDFs into one folder per day.
type LabelStore struct {
	fs   afero.Fs
	base string
}

func NewLabelStore(fs afero.Fs, base string) *LabelStore {
	return &LabelStore{fs: fs, base: base}
}

func (s *LabelStore) dayDir(at time.Time) (string, error) {
	dir := filepath.Join(s.base, at.Format("2006-01-02"))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create label folder %s: %w", dir, err)
	}
	return dir, nil
}

func (s *LabelStore) write(dir, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to write empty file %s", name)
	}
	p := filepath.Join(dir, name)
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s was written empty", p)
	}
	return p, nil
}

// SaveLabel stores a voucher label as voucher_<no>_<HHMMSS>.pdf, with a
// _thermal suffix for thermal labels.
func (s *LabelStore) SaveLabel(voucherNo string, format processors.LabelFormat, data []byte, at time.Time) (string, error) {
	dir, err := s.dayDir(at)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("voucher_%s_%s", voucherNo, at.Format("150405"))
	if format == processors.LabelThermal {
		name += "_thermal"
	}
	return s.write(dir, name+".pdf", data)
}

func (s *LabelStore) SavePickupList(pickupListNo string, data []byte, at time.Time) (string, error) {
	dir, err := s.dayDir(at)
	if err != nil {
		return "", err
	}
	return s.write(dir, fmt.Sprintf("pickup_list_%s.pdf", pickupListNo), data)
}

// Relative returns p relative to the store root, used as an archive key.
func (s *LabelStore) Relative(p string) string {
	rel, err := filepath.Rel(s.base, p)
	if err != nil {
		return filepath.Base(p)
	}
	return filepath.ToSlash(rel)
}

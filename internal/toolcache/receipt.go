package toolcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ReceiptFile is the name of the metadata file completing a cache entry.
const ReceiptFile = "receipt.yaml"

// Receipt records what a cache entry holds.
type Receipt struct {
	Name        string    `yaml:"name"`
	Version     string    `yaml:"version"`
	Arch        string    `yaml:"arch"`
	File        string    `yaml:"file"`
	SHA256      string    `yaml:"sha256"`
	InstalledAt time.Time `yaml:"installed_at"`
}

func readReceipt(dir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReceiptFile))
	if err != nil {
		return nil, err
	}

	var r Receipt
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse receipt: %w", err)
	}
	if r.File == "" {
		return nil, fmt.Errorf("parse receipt: missing file")
	}
	return &r, nil
}

// writeReceipt writes r atomically so a reader never sees a partial file.
func writeReceipt(dir string, r *Receipt) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	tmpPath := filepath.Join(dir, ReceiptFile+".tmp")
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, ReceiptFile)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename receipt: %w", err)
	}
	return nil
}

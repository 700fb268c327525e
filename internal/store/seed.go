package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/order"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedProduct is a product entry of a seed file
type SeedProduct struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Code   string `yaml:"code"`
	Family string `yaml:"family"`
}

// Seed is the YAML document used to populate an empty store
type Seed struct {
	Products []SeedProduct `yaml:"products"`
	Records  []RecordInput `yaml:"records"`
}

// DefaultSeed returns the embedded demo data
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes a seed document
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	for i, p := range seed.Products {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("seed product %d: id and name are required", i)
		}
	}
	return &seed, nil
}

// LoadSeed reads a seed file from disk
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// Apply upserts every product and record of the seed
func (s *Store) Apply(ctx context.Context, seed *Seed) error {
	for _, p := range seed.Products {
		if err := s.UpsertProduct(ctx, order.Product{ID: p.ID, Name: p.Name, Code: p.Code, Category: p.Family}); err != nil {
			return err
		}
	}
	for _, r := range seed.Records {
		if err := s.PutRecord(ctx, r); err != nil {
			return err
		}
	}

	logging.Info("Seed applied",
		zap.Int("products", len(seed.Products)),
		zap.Int("records", len(seed.Records)),
	)
	return nil
}

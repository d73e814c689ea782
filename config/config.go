// Package config holds the report profile: the geometry constants the
// layout engine reproduces bit-for-bit between renders. Profiles can be
// tuned per report type through a YAML file; untouched fields keep the
// standard values.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the full set of layout tunables for one report type.
type Profile struct {
	// Page margins: MarginX applies to the left and right edges and to
	// the hard page-bottom boundary; MarginTop is the top cursor origin.
	MarginX   float64 `yaml:"marginX"`
	MarginTop float64 `yaml:"marginTop"`

	// FooterReserved is the band above the bottom margin no content may
	// enter; the outer document writer places page footers there.
	FooterReserved float64 `yaml:"footerReserved"`

	TileColumns     int     `yaml:"tileColumns"`
	PhotoTileHeight float64 `yaml:"photoTileHeight"`
	VideoTileHeight float64 `yaml:"videoTileHeight"`
	TileGutter      float64 `yaml:"tileGutter"`

	CellPadding     float64 `yaml:"cellPadding"`
	CaptionFontSize float64 `yaml:"captionFontSize"`
	CaptionGap      float64 `yaml:"captionGap"`
	MinRowHeight    float64 `yaml:"minRowHeight"`
	BodyFontSize    float64 `yaml:"bodyFontSize"`
	HeadingFontSize float64 `yaml:"headingFontSize"`

	// ColumnFractions split the content width across the four table
	// columns: Location, Item, Subtask, Condition. Must sum to 1.
	ColumnFractions [4]float64 `yaml:"columnFractions"`
}

// Default returns the standard inspection report profile.
func Default() Profile {
	return Profile{
		MarginX:         40,
		MarginTop:       40,
		FooterReserved:  60,
		TileColumns:     4,
		PhotoTileHeight: 100,
		VideoTileHeight: 64,
		TileGutter:      8,
		CellPadding:     8,
		CaptionFontSize: 8,
		CaptionGap:      4,
		MinRowHeight:    24,
		BodyFontSize:    9,
		HeadingFontSize: 14,
		ColumnFractions: [4]float64{0.18, 0.22, 0.38, 0.22},
	}
}

// Load reads a YAML profile over the defaults, so a profile file only
// states what it changes.
func Load(path string) (Profile, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects profiles that make layout impossible.
func (p Profile) Validate() error {
	if p.TileColumns < 1 {
		return fmt.Errorf("tileColumns must be at least 1, got %d", p.TileColumns)
	}
	if p.PhotoTileHeight <= 0 || p.VideoTileHeight <= 0 {
		return fmt.Errorf("tile heights must be positive")
	}
	if p.MarginX < 0 || p.MarginTop < 0 || p.FooterReserved < 0 {
		return fmt.Errorf("margins and footer band must not be negative")
	}
	if p.MinRowHeight <= 0 || p.BodyFontSize <= 0 || p.CaptionFontSize <= 0 {
		return fmt.Errorf("row and font sizes must be positive")
	}
	sum := 0.0
	for _, f := range p.ColumnFractions {
		if f <= 0 {
			return fmt.Errorf("column fractions must be positive, got %v", p.ColumnFractions)
		}
		sum += f
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("column fractions must sum to 1, got %v", sum)
	}
	return nil
}

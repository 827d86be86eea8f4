package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MaxConfigFileSize bounds tuning files to guard against reading an
// arbitrarily large file handed to -config by mistake.
const MaxConfigFileSize = 1 << 20

// TuningConfig represents the root configuration for registration tuning
// parameters. Every field is optional; fields omitted from the JSON file
// retain their compiled defaults, so partial configs are safe.
type TuningConfig struct {
	// Sweep geometry
	ScanPeriodSecs *float64 `json:"scan_period_secs,omitempty"`
	BeamCount      *int     `json:"beam_count,omitempty"`

	// Startup
	WarmupSweeps *int `json:"warmup_sweeps,omitempty"`

	// IMU history
	ImuHistoryLen *int     `json:"imu_history_len,omitempty"`
	Gravity       *float64 `json:"gravity,omitempty"`

	// Feature extraction
	CurvatureThreshold  *float64 `json:"curvature_threshold,omitempty"`
	ClusterSpreadSqDist *float64 `json:"cluster_spread_sq_dist,omitempty"`
	OutlierRatio        *float64 `json:"outlier_ratio,omitempty"`
	OcclusionRatio      *float64 `json:"occlusion_ratio,omitempty"`
	OcclusionGapSq      *float64 `json:"occlusion_gap_sq,omitempty"`
	VoxelLeafSize       *float64 `json:"voxel_leaf_size,omitempty"`

	// Transport
	CloudQueueDepth *int `json:"cloud_queue_depth,omitempty"`
	ImuQueueDepth   *int `json:"imu_queue_depth,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// DefaultTuningConfig returns a TuningConfig carrying the compiled defaults
// for a 16-beam 10 Hz sensor.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		ScanPeriodSecs:      ptrFloat64(0.1),
		BeamCount:           ptrInt(16),
		WarmupSweeps:        ptrInt(20),
		ImuHistoryLen:       ptrInt(200),
		Gravity:             ptrFloat64(9.81),
		CurvatureThreshold:  ptrFloat64(0.1),
		ClusterSpreadSqDist: ptrFloat64(0.05),
		OutlierRatio:        ptrFloat64(2e-4),
		OcclusionRatio:      ptrFloat64(0.1),
		OcclusionGapSq:      ptrFloat64(0.1),
		VoxelLeafSize:       ptrFloat64(0.2),
		CloudQueueDepth:     ptrInt(2),
		ImuQueueDepth:       ptrInt(50),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file and merges it over
// the compiled defaults. The file is validated to ensure it has a .json
// extension and is under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	loaded := &TuningConfig{}
	if err := json.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	merged := DefaultTuningConfig()
	merged.Merge(loaded)
	return merged, nil
}

// Merge overlays non-nil fields of other onto c.
func (c *TuningConfig) Merge(other *TuningConfig) {
	if other == nil {
		return
	}
	if other.ScanPeriodSecs != nil {
		c.ScanPeriodSecs = other.ScanPeriodSecs
	}
	if other.BeamCount != nil {
		c.BeamCount = other.BeamCount
	}
	if other.WarmupSweeps != nil {
		c.WarmupSweeps = other.WarmupSweeps
	}
	if other.ImuHistoryLen != nil {
		c.ImuHistoryLen = other.ImuHistoryLen
	}
	if other.Gravity != nil {
		c.Gravity = other.Gravity
	}
	if other.CurvatureThreshold != nil {
		c.CurvatureThreshold = other.CurvatureThreshold
	}
	if other.ClusterSpreadSqDist != nil {
		c.ClusterSpreadSqDist = other.ClusterSpreadSqDist
	}
	if other.OutlierRatio != nil {
		c.OutlierRatio = other.OutlierRatio
	}
	if other.OcclusionRatio != nil {
		c.OcclusionRatio = other.OcclusionRatio
	}
	if other.OcclusionGapSq != nil {
		c.OcclusionGapSq = other.OcclusionGapSq
	}
	if other.VoxelLeafSize != nil {
		c.VoxelLeafSize = other.VoxelLeafSize
	}
	if other.CloudQueueDepth != nil {
		c.CloudQueueDepth = other.CloudQueueDepth
	}
	if other.ImuQueueDepth != nil {
		c.ImuQueueDepth = other.ImuQueueDepth
	}
}

// Validate checks the merged configuration for values the pipeline cannot
// operate with.
func (c *TuningConfig) Validate() error {
	if c.ScanPeriodSecs == nil || *c.ScanPeriodSecs <= 0 {
		return fmt.Errorf("scan_period_secs must be positive")
	}
	if c.BeamCount == nil || *c.BeamCount != 16 {
		return fmt.Errorf("beam_count must be 16 for this sensor")
	}
	if c.ImuHistoryLen == nil || *c.ImuHistoryLen < 2 {
		return fmt.Errorf("imu_history_len must be at least 2")
	}
	if c.WarmupSweeps == nil || *c.WarmupSweeps < 0 {
		return fmt.Errorf("warmup_sweeps must not be negative")
	}
	if c.VoxelLeafSize == nil || *c.VoxelLeafSize <= 0 {
		return fmt.Errorf("voxel_leaf_size must be positive")
	}
	return nil
}

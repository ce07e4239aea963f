package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/tabletpath/internal/model"
)

// jobFile is the on-disk layout of a job. Shape parameters and settings
// are optional; missing values come from the defaults.
type jobFile struct {
	model.Job `yaml:",inline"`
	Notes     string `yaml:"notes,omitempty"`
}

// LoadJob reads a YAML job file. Values are applied over cfg's defaults
// and the shape's stock dimensions, so a file naming only the quantity,
// volume and shape is complete. A job without an ID gets a fresh one.
func LoadJob(path string, cfg model.AppConfig) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("read job file: %w", err)
	}
	return ParseJob(data, cfg)
}

// ParseJob decodes YAML job data. See LoadJob.
func ParseJob(data []byte, cfg model.AppConfig) (model.Job, error) {
	var shapeOnly struct {
		Shape string `yaml:"shape"`
	}
	if err := yaml.Unmarshal(data, &shapeOnly); err != nil {
		return model.Job{}, fmt.Errorf("parse job: %w", err)
	}

	shape := cfg.DefaultShape
	if shapeOnly.Shape != "" {
		kind, err := model.ParseShapeKind(shapeOnly.Shape)
		if err != nil {
			return model.Job{}, fmt.Errorf("parse job: %w", err)
		}
		shape = kind
	}

	jf := jobFile{Job: model.Job{
		Quantity:    cfg.DefaultQuantity,
		ShapeParams: model.DefaultShapeParams(shape),
		Settings:    cfg.DefaultSettings,
	}}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&jf); err != nil {
		return model.Job{}, fmt.Errorf("parse job: %w", err)
	}

	job := jf.Job
	job.Shape = shape
	head, err := model.ParseHeadMode(string(job.Settings.HeadMode))
	if err != nil {
		return model.Job{}, fmt.Errorf("parse job: %w", err)
	}
	job.Settings.HeadMode = head
	if job.ID == "" {
		job.ID = model.NewJobID()
	}
	return job, nil
}

// SaveJob writes a job as YAML, creating parent directories.
func SaveJob(path string, job model.Job) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(job); err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

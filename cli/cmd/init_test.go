package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		force    bool
		existing bool
		wantErr  error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, existing: true},
		{name: "fail_without_force", existing: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config")

			if tt.existing {
				if err := os.WriteFile(confPath, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct {
				Data    string   `default:"./data"`
				Module  []string `sep:"none"`
				Verbose bool
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse([]string{"--module", "grb", "--module", "spi"})
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(context.Background(), kctx))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			if tt.wantErr != nil {
				if string(content) != "existing content" {
					t.Errorf("existing file was modified: %q", content)
				}

				return
			}

			var got struct {
				Data    string   `yaml:"data"`
				Module  []string `yaml:"module"`
				Verbose bool     `yaml:"verbose"`
			}

			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if got.Data != "./data" || len(got.Module) != 2 || got.Module[1] != "spi" || got.Verbose {
				t.Errorf("generated config = %+v", got)
			}
		})
	}
}

func TestInitBuildConfig(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose    bool     `help:"Enable verbose output"`
		Output     string   `help:"Output file"`
		Count      int      `help:"Number of items"`
		Assume     []string `sep:"none"`
		Empty      string
		Secret     string `hidden:""`
		PprofMode  string
		PprofQuiet bool
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{
		"--verbose", "--output=test.txt", "--count=5",
		"--secret=x", "--pprof-mode=cpu", "--pprof-quiet",
	})
	if err != nil {
		t.Fatal(err)
	}

	config := (&Init{}).buildConfig(WithContext(context.Background(), kctx))

	want := []string{"verbose", "output", "count"}
	if len(config) != len(want) {
		t.Fatalf("buildConfig() = %v, want keys %v", config, want)
	}

	for i, item := range config {
		if item.Key != want[i] {
			t.Errorf("buildConfig()[%d].Key = %v, want %q", i, item.Key, want[i])
		}
	}

	if config[2].Value != 5 {
		t.Errorf("count = %#v, want 5", config[2].Value)
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", false, false},
		{"int", 3, 3},
		{"float", 2.5, 2.5},
		{"string", "text", "text"},
		{"empty_string", "", nil},
		{"empty_slice", []string{}, nil},
		{"stringer", time.Second, "1s"},
		{"other", struct{ A int }{1}, "{1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := configValue(tt.in); got != tt.want {
				t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}

	if got, ok := configValue([]string{"a"}).([]string); !ok || len(got) != 1 {
		t.Errorf("configValue([a]) = %#v", got)
	}
}

package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/view"
)

// run executes the CLI with env as the environment.
func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	orig := getenv
	getenv = func(k string) string { return env[k] }
	t.Cleanup(func() { getenv = orig })

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--dir", t.TempDir()))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version output = %q", out)
	}
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, nil, "routes")
	if err != nil {
		t.Fatalf("routes error = %v", err)
	}
	for _, want := range []string{"mainPage", "/fractals", `""`, "2 routes valid"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveCommand(t *testing.T) {
	env := map[string]string{"BASE_URL": "/app"}

	tests := []struct {
		args     []string
		wantName string
		wantHref string
	}{
		{[]string{"resolve", "/app/fractals"}, "fractals", "/app/fractals"},
		{[]string{"resolve", "/app/"}, "mainPage", "/app/"},
		{[]string{"resolve", "/app"}, "mainPage", "/app/"},
		{[]string{"resolve", "--name", "fractals"}, "fractals", "/app/fractals"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, env, tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if !strings.Contains(out, tt.wantName) || !strings.Contains(out, "href:     "+tt.wantHref+"\n") {
				t.Errorf("output = %q", out)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := run(t, nil, "resolve", "--name", "gallery")
	if !stderrors.Is(err, errors.New("N002")) {
		t.Errorf("error = %v, want N002", err)
	}
	_, err = run(t, nil, "resolve", "/gallery")
	if !stderrors.Is(err, errors.New("N001")) {
		t.Errorf("error = %v, want N001", err)
	}
}

func TestResolveLoadFromViewsDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "FractalsPage.html"), []byte("<p>mandelbrot</p>"), 0644)

	out, err := run(t, map[string]string{"FRACTALS_VIEWS_DIR": dir}, "resolve", "--load", "/fractals")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(out, "FractalsPage") || !strings.Contains(out, "17 bytes") {
		t.Errorf("output = %q", out)
	}

	// The directory has no MainPage bundle.
	_, err = run(t, map[string]string{"FRACTALS_VIEWS_DIR": dir}, "resolve", "--load", "/")
	if !stderrors.Is(err, errors.New("V001")) {
		t.Errorf("error = %v, want V001", err)
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, map[string]string{"BASE_URL": "/app", "FRACTALS_HISTORY": "hash"}, "config", "--format", "toml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "/app") || !strings.Contains(out, "hash") {
		t.Errorf("output = %q", out)
	}
}

func TestLoadConfigRejectsBadEnv(t *testing.T) {
	_, err := loadConfig(t.TempDir(), func(k string) string {
		if k == "FRACTALS_HISTORY" {
			return "pushstate"
		}
		return ""
	})
	if !stderrors.Is(err, errors.New("C003")) {
		t.Errorf("error = %v, want C003", err)
	}
}

func TestViewSource(t *testing.T) {
	env := func(string) string { return "" }

	cfg, _ := loadConfig(t.TempDir(), env)
	if viewSource(cfg, env) != nil {
		t.Error("default config should use the embedded bundles")
	}

	cfg.Views.Dir = "bundles"
	if _, ok := viewSource(cfg, env).(*view.FSSource); !ok {
		t.Error("views.dir should select a directory source")
	}

	cfg.Views.Dir = ""
	cfg.Views.S3.Bucket = "fractals-views"
	cfg.Views.S3.Region = "us-east-1"
	src, ok := viewSource(cfg, env).(*view.S3Source)
	if !ok {
		t.Fatal("views.s3.bucket should select an S3 source")
	}
	if key := src.Key("MainPage.html"); key != "MainPage.html" {
		t.Errorf("Key() = %q", key)
	}
}

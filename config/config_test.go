package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.DataDir != "./data" || cfg.OutputFile != "ocr_results.json" || cfg.OutputDir != "./output" {
		t.Fatalf("unexpected path defaults: %+v", cfg)
	}
	if cfg.Engine != "paddle" || cfg.Language != "ch" || !cfg.AngleClassifier {
		t.Fatalf("unexpected engine defaults: %+v", cfg)
	}
	if cfg.Workers != 1 || cfg.LogLevel != "info" {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OCRPIPE_DATA_DIR", "/srv/images")
	t.Setenv("OCRPIPE_ENGINE", "vision")
	t.Setenv("OCRPIPE_LANG", "en")
	t.Setenv("OCRPIPE_ANGLE_CLS", "false")
	t.Setenv("OCRPIPE_FAST", "1")
	t.Setenv("OCRPIPE_WORKERS", "8")

	cfg := Load()
	if cfg.DataDir != "/srv/images" || cfg.Engine != "vision" || cfg.Language != "en" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.AngleClassifier || !cfg.FastRecognition || cfg.Workers != 8 {
		t.Fatalf("flag overrides not applied: %+v", cfg)
	}
	// An untouched field keeps its default.
	if cfg.OutputFile != "ocr_results.json" {
		t.Fatalf("default lost: %+v", cfg)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("OCRPIPE_WORKERS", "many")
	t.Setenv("OCRPIPE_ANGLE_CLS", "sure")
	cfg := Load()
	if cfg.Workers != 1 || !cfg.AngleClassifier {
		t.Fatalf("malformed values must keep defaults: %+v", cfg)
	}
}

func TestLoadClampsWorkers(t *testing.T) {
	t.Setenv("OCRPIPE_WORKERS", "-3")
	if cfg := Load(); cfg.Workers != 1 {
		t.Fatalf("Workers = %d, want 1", cfg.Workers)
	}
}

func TestVisionLanguage(t *testing.T) {
	cases := map[string]string{
		"ch": "zh-Hans", "zh": "zh-Hans", "zh-Hans": "zh-Hans",
		"en": "en-US", "EN": "en-US",
		"ja": "ja",
	}
	for in, want := range cases {
		if got := VisionLanguage(in); got != want {
			t.Errorf("VisionLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTesseractLanguage(t *testing.T) {
	cases := map[string]string{
		"ch": "chi_sim", "chi_sim": "chi_sim",
		"en": "eng", "eng": "eng",
		"deu": "deu",
	}
	for in, want := range cases {
		if got := TesseractLanguage(in); got != want {
			t.Errorf("TesseractLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

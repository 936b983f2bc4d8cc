package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewspace.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MaxGroups != 10 || c.Cluster.Threshold != 0.85 || c.Cluster.RemoteRetries != 1 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Sources["threshold"].Source != SourceDefault {
		t.Errorf("expected default source, got %s", c.Sources["threshold"].Source)
	}
}

func TestLoad_Precedence_ConfigThenEnv(t *testing.T) {
	path := writeConfig(t, `db_path: from-config.db
cluster:
  max_groups: 5
  threshold: 0.7
  remote_addr: localhost:50052
  remote_timeout: 2s
  weights:
    dimension: 0.5
    measure: 0.25
    profile: 0.25
associations:
  interest_weight: 0.1
`)
	t.Setenv("VIEWSPACE_MAX_GROUPS", "7")
	t.Setenv("VIEWSPACE_USE_REMOTE", "true")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.DBPath != "from-config.db" || c.Sources["db_path"].Source != SourceConfig {
		t.Errorf("expected db path from config, got %q (%s)", c.DBPath, c.Sources["db_path"].Source)
	}
	if c.MaxGroups != 7 || c.Sources["max_groups"].Source != SourceEnv {
		t.Errorf("expected env to override max_groups, got %d (%s)", c.MaxGroups, c.Sources["max_groups"].Source)
	}
	if c.Sources["max_groups"].From != "VIEWSPACE_MAX_GROUPS" {
		t.Errorf("expected env key recorded, got %q", c.Sources["max_groups"].From)
	}
	if c.Cluster.Threshold != 0.7 || c.Cluster.RemoteTimeout != 2*time.Second {
		t.Errorf("cluster settings not applied: %+v", c.Cluster)
	}
	if c.Weights.Dimension != 0.5 {
		t.Errorf("weights not applied: %+v", c.Weights)
	}
	if !c.UseRemote {
		t.Error("expected use_remote from env")
	}
	if c.Association.InterestWeight != 0.1 || c.Association.Limit != 20 {
		t.Errorf("unexpected association config: %+v", c.Association)
	}
}

func TestLoad_EnvWeightsAndOrigins(t *testing.T) {
	t.Setenv("VIEWSPACE_WEIGHTS", "0.6, 0.2, 0.2")
	t.Setenv("VIEWSPACE_CORS_ORIGINS", "http://a.test, http://b.test")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Weights.Dimension != 0.6 || c.Weights.Profile != 0.2 {
		t.Errorf("unexpected weights: %+v", c.Weights)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", c.CORSOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"VIEWSPACE_WEIGHTS":        "0.5,0.5,0.5",
		"VIEWSPACE_THRESHOLD":      "0",
		"VIEWSPACE_MAX_GROUPS":     "many",
		"VIEWSPACE_REMOTE_TIMEOUT": "-1s",
		"VIEWSPACE_USE_REMOTE":     "true",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "cluster: [not, a, map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

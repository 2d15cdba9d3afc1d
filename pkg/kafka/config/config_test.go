package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Enabled {
		t.Errorf("Enabled = true, want false by default")
	}
	if cfg.IntakeTopic != DefaultIntakeTopic || cfg.DLQTopic != DefaultDLQTopic {
		t.Errorf("topics = %q/%q, want defaults", cfg.IntakeTopic, cfg.DLQTopic)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != DefaultKafkaBrokers {
		t.Errorf("Brokers = %v, want [%s]", cfg.Brokers, DefaultKafkaBrokers)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092")
	t.Setenv(EnvKafkaReviewTopic, "review")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Enabled {
		t.Errorf("Enabled = false, want true")
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ReviewTopic != "review" {
		t.Errorf("ReviewTopic = %q, want %q", cfg.ReviewTopic, "review")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty broker", mutate: func(c *Config) { c.Brokers = []string{"k1", ""} }, wantErr: "Broker 1 cannot be empty"},
		{name: "dlq equals intake", mutate: func(c *Config) { c.DLQTopic = c.IntakeTopic }, wantErr: "DLQTopic must differ"},
		{name: "empty review topic", mutate: func(c *Config) { c.ReviewTopic = " " }, wantErr: "ReviewTopic cannot be empty"},
		{name: "bad compression", mutate: func(c *Config) { c.ProducerCompression = "brotli" }, wantErr: "ProducerCompression"},
		{name: "bad acks", mutate: func(c *Config) { c.ProducerRequireAcks = 2 }, wantErr: "ProducerRequireAcks"},
		{name: "bad offset", mutate: func(c *Config) { c.ConsumerStartOffset = 5 }, wantErr: "ConsumerStartOffset"},
		{name: "negative retries", mutate: func(c *Config) { c.ConsumerMaxRetries = -1 }, wantErr: "ConsumerMaxRetries"},
		{name: "zero max wait", mutate: func(c *Config) { c.ConsumerMaxWait = 0 }, wantErr: "ConsumerMaxWait must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

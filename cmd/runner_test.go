package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	tu "github.com/desertthunder/ytdash/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			clients := func(ctx context.Context, b *models.TokenBundle) (services.Client, error) {
				return tu.NewFakeClient(), nil
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Clients:    clients,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if !runner.loaded {
				t.Error("expected a provided config to skip loading")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.clients == nil {
				t.Error("expected clients to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.loaded {
				t.Error("expected config to be loaded from --config")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		videos := []models.VideoSummary{{ID: "v1", Title: "First"}}

		tc := []struct {
			name    string
			data    any
			pretty  bool
			output  io.Writer
			want    string
			wantErr string
		}{
			{name: "compact", data: videos, want: `[{"id":"v1","title":"First","description":""}]` + "\n"},
			{name: "pretty", data: videos, pretty: true, want: "[\n  {\n    \"id\": \"v1\",\n    \"title\": \"First\",\n    \"description\": \"\"\n  }\n]\n"},
			{name: "unmarshalable", data: make(chan int), wantErr: "failed to marshal JSON"},
			{name: "write failure", data: videos, output: tu.FailingWriter{}, wantErr: "failed to write output"},
			{name: "newline failure", data: videos, output: tu.NewLimitedWriter(1, &bytes.Buffer{}), wantErr: "failed to write newline"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				buf := &bytes.Buffer{}
				output := tt.output
				if output == nil {
					output = buf
				}
				runner := NewRunner(RunnerOpts{Output: output})

				err := runner.writeJSON(tt.data, tt.pretty)
				if tt.wantErr != "" {
					if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
						t.Fatalf("expected %q error, got %v", tt.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if buf.String() != tt.want {
					t.Errorf("expected %q, got %q", tt.want, buf.String())
				}
			})
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("formats arguments", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("Deleted %d of %d comment(s)", 2, 3); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.String() != "Deleted 2 of 3 comment(s)" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("✓ %s", "done")
			if output.String() != "\n✓ done\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.FailingWriter{}})

			err := runner.writePlain("ID: %s", "v1")
			if !errors.Is(err, tu.ErrInjected) {
				t.Errorf("expected wrapped write error, got %v", err)
			}
		})
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("My videos (2)")

		if lines := strings.Split(strings.TrimSpace(output.String()), "\n"); len(lines) != 3 || lines[1] != "My videos (2)" {
			t.Errorf("unexpected header %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, name := range []string{"setup", "auth", "videos", "comments", "likes", "playlists", "upload", "serve", "tui"} {
			if !names[name] {
				t.Errorf("expected %s command to be registered", name)
			}
		}
	})
}

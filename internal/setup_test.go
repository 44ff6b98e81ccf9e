package internal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/searchchat/internal/agent"
	"github.com/baalimago/searchchat/internal/chat"
	"github.com/baalimago/searchchat/internal/text/generic"
	"github.com/baalimago/searchchat/internal/tools"
	"github.com/baalimago/searchchat/internal/utils"
	"github.com/baalimago/searchchat/internal/vendors/groq"
)

type stubAnswerer struct{}

func (stubAnswerer) Answer(ctx context.Context, query string, progress chan<- agent.Event) (string, error) {
	return "stub answer", nil
}

func TestGetModeFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want Mode
	}{
		{[]string{}, CHAT},
		{[]string{"c"}, CHAT},
		{[]string{"chat"}, CHAT},
		{[]string{"t"}, TOOLS},
		{[]string{"tools", "wikipedia"}, TOOLS},
		{[]string{"h"}, HELP},
		{[]string{"version"}, VERSION},
	}
	for _, tc := range tests {
		got, err := getModeFromArgs(tc.args)
		if err != nil {
			t.Errorf("unexpected error for %v: %v", tc.args, err)
		}
		if got != tc.want {
			t.Errorf("mode for %v = %v, want %v", tc.args, got, tc.want)
		}
	}
	if _, err := getModeFromArgs([]string{"unknown"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestLoadConfigs(t *testing.T) {
	t.Run("no files gives defaults", func(t *testing.T) {
		conf, gConf, err := loadConfigs(t.TempDir(), defaultFlags)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, conf.MaxIterations, agent.DefaultMaxIterations)
		testboil.FailTestIfDiff(t, conf.Bound, tools.DefaultBound)
		testboil.FailTestIfDiff(t, conf.WikipediaLang, "en")
		testboil.FailTestIfDiff(t, gConf.Model, generic.DefaultModel)
		testboil.FailTestIfDiff(t, gConf.URL, generic.GroqURL)
	})

	t.Run("file values are kept, missing ones defaulted", func(t *testing.T) {
		dir := t.TempDir()
		err := os.WriteFile(filepath.Join(dir, configFileName), []byte(`{"expand": true, "wikipedia-lang": "sv"}`), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(filepath.Join(dir, groqFileName), []byte(`{"model": "mixtral-8x7b-32768"}`), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		conf, gConf, err := loadConfigs(dir, defaultFlags)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, conf.Expand, true)
		testboil.FailTestIfDiff(t, conf.WikipediaLang, "sv")
		testboil.FailTestIfDiff(t, conf.MaxIterations, agent.DefaultMaxIterations)
		testboil.FailTestIfDiff(t, gConf.Model, "mixtral-8x7b-32768")
		testboil.FailTestIfDiff(t, gConf.ModelsURL, generic.GroqModelsURL)
	})

	t.Run("flags beat files", func(t *testing.T) {
		dir := t.TempDir()
		err := os.WriteFile(filepath.Join(dir, groqFileName), []byte(`{"model": "from-file"}`), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		_, gConf, err := loadConfigs(dir, Configurations{ChatModel: "from-flag"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, gConf.Model, "from-flag")
	})

	t.Run("broken file is an error", func(t *testing.T) {
		dir := t.TempDir()
		err := os.WriteFile(filepath.Join(dir, configFileName), []byte(`{"expand": `), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := loadConfigs(dir, defaultFlags); err == nil {
			t.Fatal("expected error")
		}
	})
}

func modelsServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gsk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(`{"data": [{"id": "llama3-8b-8192"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewAgentFactory(t *testing.T) {
	t.Run("valid key gives an agent", func(t *testing.T) {
		gConf := groq.Default
		gConf.ModelsURL = modelsServer(t, http.StatusOK).URL
		a, err := newAgentFactory(gConf, tools.Config{}, 3)(context.Background(), "gsk_test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a == nil {
			t.Fatal("expected agent")
		}
	})

	t.Run("rejected key is a configuration error", func(t *testing.T) {
		gConf := groq.Default
		gConf.ModelsURL = modelsServer(t, http.StatusOK).URL
		_, err := newAgentFactory(gConf, tools.Config{}, 3)(context.Background(), "gsk_bad")
		var confErr *agent.ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("expected configuration error, got: %v", err)
		}
		if !errors.Is(err, generic.ErrInvalidCredential) {
			t.Fatalf("expected invalid credential, got: %v", err)
		}
	})

	t.Run("unknown model is a configuration error", func(t *testing.T) {
		gConf := groq.Default
		gConf.Model = "no-such-model"
		gConf.ModelsURL = modelsServer(t, http.StatusOK).URL
		_, err := newAgentFactory(gConf, tools.Config{}, 3)(context.Background(), "gsk_test")
		if !errors.Is(err, generic.ErrUnknownModel) {
			t.Fatalf("expected unknown model, got: %v", err)
		}
	})

	t.Run("factory does not mutate the template config", func(t *testing.T) {
		gConf := groq.Default
		gConf.ModelsURL = ""
		_, err := newAgentFactory(gConf, tools.Config{}, 3)(context.Background(), "gsk_test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, gConf.StreamCompleter.Model, "")
	})
}

func TestSetup(t *testing.T) {
	const testUsage = "searchchat usage raw: %v, expand: %v, iterations: %v, dir: %v\n"

	t.Run("help", func(t *testing.T) {
		t.Setenv("SEARCHCHAT_CONFIG_DIR", t.TempDir())
		var err error
		got := testboil.CaptureStdout(t, func(t *testing.T) {
			_, err = Setup(testUsage, []string{"help"})
		})
		if !errors.Is(err, utils.ErrUserInitiatedExit) {
			t.Fatalf("expected user exit, got: %v", err)
		}
		testboil.AssertStringContains(t, got, "iterations: 15")
	})

	t.Run("tools lists all tools", func(t *testing.T) {
		t.Setenv("SEARCHCHAT_CONFIG_DIR", t.TempDir())
		t.Setenv("NO_COLOR", "true")
		var err error
		got := testboil.CaptureStdout(t, func(t *testing.T) {
			_, err = Setup(testUsage, []string{"tools"})
		})
		if !errors.Is(err, utils.ErrUserInitiatedExit) {
			t.Fatalf("expected user exit, got: %v", err)
		}
		for _, name := range []string{"Search", "arxiv", "wikipedia"} {
			testboil.AssertStringContains(t, got, name)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Setenv("SEARCHCHAT_CONFIG_DIR", t.TempDir())
		if _, err := Setup(testUsage, []string{"nope"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("chat picks up key from env", func(t *testing.T) {
		t.Setenv("SEARCHCHAT_CONFIG_DIR", t.TempDir())
		t.Setenv(apiKeyEnv, "gsk_env")
		var app *App
		var err error
		testboil.CaptureStdout(t, func(t *testing.T) {
			app, err = Setup(testUsage, []string{"-r"})
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, app.apiKey, "gsk_env")
	})
}

func TestAppRun(t *testing.T) {
	newApp := func(out *bytes.Buffer, key string, factory chat.AgentFactory, input string) *App {
		return &App{
			session: chat.NewSession(chat.Config{Factory: factory, Raw: true, Username: "tester", Out: out}),
			apiKey:  key,
			input:   utils.NewLineReader(strings.NewReader(input)),
		}
	}
	okFactory := func(ctx context.Context, apiKey string) (chat.Answerer, error) {
		return stubAnswerer{}, nil
	}

	t.Run("missing key when not interactive", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out, "", okFactory, "").Run(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		testboil.AssertStringContains(t, err.Error(), apiKeyEnv)
		testboil.AssertStringContains(t, out.String(), chat.MissingCredentialInfo)
	})

	t.Run("configuration error halts", func(t *testing.T) {
		var out bytes.Buffer
		failing := func(ctx context.Context, apiKey string) (chat.Answerer, error) {
			return nil, errors.New("bad key")
		}
		err := newApp(&out, "gsk_x", failing, "hello\n").Run(context.Background())
		var confErr *agent.ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("expected configuration error, got: %v", err)
		}
	})

	t.Run("answers until input ends", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out, "gsk_x", okFactory, "hello\n").Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.AssertStringContains(t, out.String(), "stub answer")
	})
}

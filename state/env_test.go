package state

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"pervade/config"
	imgutil "pervade/utils/images"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	if ctx == nil {
		t.Fatal("ContextWithEnv() returned nil")
	}

	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}

	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
	if env.RunID == uuid.Nil {
		t.Error("Run ID not assigned")
	}
}

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		ctx := ContextWithEnv(context.Background())
		env := EnvFromContext(ctx)

		if env == nil {
			t.Error("Expected non-nil environment")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()

		// Use plain context without env
		EnvFromContext(context.Background())
	})
}

func TestNewLocalEnvDefaults(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	if len(env.DefaultCoverArt) == 0 {
		t.Error("Default cover art not seeded")
	}
	if !bytes.Contains(env.DefaultFrontMatter, []byte("intentionally blank")) {
		t.Errorf("Unexpected default front matter %q", env.DefaultFrontMatter)
	}
	if !bytes.HasPrefix(env.DefaultCoverImage, []byte("<svg")) {
		t.Error("Default cover image is not an SVG document")
	}
	if env.CodePage != nil {
		t.Error("Expected no code page by default")
	}
}

func TestDefaultCoverImageRasterize(t *testing.T) {
	env := newLocalEnv()

	img, err := imgutil.RasterizeSVGToImage(env.DefaultCoverImage, 0, 0)
	if err != nil {
		t.Fatalf("rasterize default cover: %v", err)
	}
	if img.Bounds().Dx() != 600 || img.Bounds().Dy() != 800 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}
}

func TestLocalEnv_Uptime(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()

	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > 1*time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}

		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Error("Expected restoreStdLog to be set")
		}

		env.RestoreStdLog()
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: nil,
		}

		// Should not panic
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
	})
}

func TestLocalEnv_RestoreStdLog(t *testing.T) {
	t.Run("with redirect", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}

		env.RedirectStdLog()
		// Should not panic
		env.RestoreStdLog()
	})

	t.Run("without redirect", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}

		// Should not panic even without redirect
		env.RestoreStdLog()
	})

	t.Run("nil logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: nil,
		}

		// Should not panic
		env.RestoreStdLog()
	})
}

func TestLocalEnv_Fields(t *testing.T) {
	cfg := &config.Config{
		Version: 1,
	}
	rpt := &config.Report{}
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	env := &LocalEnv{
		Cfg:        cfg,
		Rpt:        rpt,
		Log:        log,
		WithCover:  true,
		MirrorPath: "mirror.zip",
		start:      time.Now(),
	}

	if env.Cfg != cfg {
		t.Error("Config not set correctly")
	}
	if env.Rpt != rpt {
		t.Error("Report not set correctly")
	}
	if env.Log != log {
		t.Error("Logger not set correctly")
	}
	if !env.WithCover {
		t.Error("WithCover not set correctly")
	}
	if env.MirrorPath != "mirror.zip" {
		t.Error("MirrorPath not set correctly")
	}
	if env.SaveMirrorPath != "" {
		t.Error("SaveMirrorPath not set correctly")
	}
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	env := &LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}

	// Test multiple redirect/restore cycles
	for i := 0; i < 3; i++ {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("Iteration %d: restoreStdLog not set", i)
		}
		env.RestoreStdLog()
	}
}

func TestEnvKey(t *testing.T) {
	// Verify that envKey is a unique type
	var key envKey
	ctx := context.WithValue(context.Background(), key, &LocalEnv{start: time.Now()})

	val := ctx.Value(key)
	if val == nil {
		t.Error("Failed to retrieve value with envKey")
	}

	if _, ok := val.(*LocalEnv); !ok {
		t.Error("Retrieved value is not *LocalEnv")
	}
}

func TestLocalEnv_Integration(t *testing.T) {
	// Simulate a typical usage pattern
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)

	// Set up environment
	env.Cfg = &config.Config{Version: 1}
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	env.Rpt = &config.Report{}
	env.WithCover = true
	env.SaveMirrorPath = "pages.zip"

	// Redirect logs
	env.RedirectStdLog()

	// Simulate some work
	time.Sleep(5 * time.Millisecond)

	// Check uptime
	if env.Uptime() < 5*time.Millisecond {
		t.Error("Uptime too small")
	}

	// Restore logs
	env.RestoreStdLog()

	// Verify all fields are accessible
	if env.Cfg == nil || env.Log == nil || env.Rpt == nil {
		t.Error("Environment not properly initialized")
	}
}

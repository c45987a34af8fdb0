// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomfodm/ia/internal/messages"
	"github.com/nomfodm/ia/internal/platform"
)

const sampleCatalog = `{
  "apps": [
    {
      "fullAppName": "Visual Studio Code",
      "shortAppName": "VS Code",
      "setup": {
        "windows": {"setupFilename": "code.exe", "setupUrl": "https://example.com/code.exe", "setupCommand": ["ia/code.exe"]},
        "linux": {"setupFilename": "noSetupFile", "setupCommand": ["sudo", "snap", "install", "code", "--classic"]}
      },
      "configurations": [
        {"fullConfigName": "C++ development", "shortConfigName": "C++",
         "configureScriptFilename": "cppcompvscode.py", "configureScriptUrl": "https://example.com/cpp.py"}
      ]
    }
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&ClientConfig{
		CatalogURL:  srv.URL + "/info.json",
		MessagesURL: srv.URL + "/" + LanguagePlaceholder + ".json",
	})
}

// =============================================================================
// FETCH CATALOG TESTS
// =============================================================================

func TestFetchCatalog_Success(t *testing.T) {
	var ua string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		assert.Equal(t, "/info.json", r.URL.Path)
		w.Write([]byte(sampleCatalog))
	})

	cat, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.Apps, 1)
	assert.Equal(t, "ia", ua)

	app := cat.Apps[0]
	assert.Equal(t, "VS Code", app.ShortAppName)
	linux, ok := app.SetupFor(platform.Linux)
	require.True(t, ok)
	assert.False(t, linux.NeedsDownload())
	assert.Equal(t, []string{"sudo", "snap", "install", "code", "--classic"}, linux.SetupCommand)
	win, ok := app.SetupFor(platform.Windows)
	require.True(t, ok)
	assert.True(t, win.NeedsDownload())
	assert.Equal(t, "https://example.com/code.exe", win.SetupURL)
	require.Len(t, app.Configurations, 1)
	assert.Equal(t, "cppcompvscode.py", app.Configurations[0].ConfigureScriptFilename)
}

func TestFetchCatalog_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.False(t, errors.Is(err, ErrMessagesUnavailable))

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestFetchCatalog_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(&ClientConfig{CatalogURL: url + "/info.json"})
	_, err := c.FetchCatalog(context.Background())
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
}

func TestFetchCatalog_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"apps": [`))
	})

	_, err := c.FetchCatalog(context.Background())
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
}

func TestFetchCatalog_MissingApps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"programs": []}`))
	})

	_, err := c.FetchCatalog(context.Background())
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.Contains(t, err.Error(), "apps")
}

func TestFetchValidCatalog_RejectsMissingPlatform(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"apps": [{"fullAppName": "A", "shortAppName": "A",
			"setup": {"windows": {"setupFilename": "noSetupFile", "setupCommand": ["a"]}}}]}`))
	})

	_, err := c.FetchValidCatalog(context.Background(), platform.Linux)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "apps[0].setup", verrs[0].Field)
}

// =============================================================================
// FETCH MESSAGES TESTS
// =============================================================================

func TestFetchMessages_DefaultLanguageSkipsNetwork(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	table, err := c.FetchMessages(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, messages.Default(), table)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetchMessages_Remote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ru.json", r.URL.Path)
		w.Write([]byte(`{"welcome": "Добро пожаловать, v%s"}`))
	})

	table, err := c.FetchMessages(context.Background(), "ru")
	require.NoError(t, err)
	assert.Equal(t, "Добро пожаловать, v%s", table[messages.Welcome])
	// untranslated keys fall back to English
	assert.Equal(t, messages.Default()[messages.Installing], table[messages.Installing])
}

func TestFetchMessages_Unavailable(t *testing.T) {
	for _, body := range []string{"", "not json", "{}"} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if body == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(body))
		})
		_, err := c.FetchMessages(context.Background(), "de")
		assert.True(t, errors.Is(err, ErrMessagesUnavailable), "body %q: %v", body, err)
	}
}

func TestMessagesURL(t *testing.T) {
	c := NewClient(nil)
	assert.True(t, strings.HasSuffix(c.MessagesURL("ru"), "/ru.json"))
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func validApp() App {
	return App{
		FullAppName:  "Full",
		ShortAppName: "Short",
		Setup: map[string]SetupSpec{
			"linux": {SetupFilename: "setup.sh", SetupURL: "https://example.com/setup.sh", SetupCommand: []string{"sh", "ia/setup.sh"}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*App)
		field  string
	}{
		{"valid", func(a *App) {}, ""},
		{"sentinel without url", func(a *App) {
			a.Setup["linux"] = SetupSpec{SetupFilename: NoSetupFile, SetupCommand: []string{"true"}}
		}, ""},
		{"empty name", func(a *App) { a.FullAppName = "" }, "apps[0].fullAppName"},
		{"missing url", func(a *App) {
			s := a.Setup["linux"]
			s.SetupURL = ""
			a.Setup["linux"] = s
		}, "apps[0].setup.linux.setupUrl"},
		{"path in filename", func(a *App) {
			s := a.Setup["linux"]
			s.SetupFilename = "../evil"
			a.Setup["linux"] = s
		}, "apps[0].setup.linux.setupFilename"},
		{"empty command", func(a *App) {
			s := a.Setup["linux"]
			s.SetupCommand = nil
			a.Setup["linux"] = s
		}, "apps[0].setup.linux.setupCommand"},
		{"bad config", func(a *App) {
			a.Configurations = []ConfigSpec{{FullConfigName: "x", ConfigureScriptFilename: `dir\x.py`, ConfigureScriptURL: "u"}}
		}, "apps[0].configurations[0].configureScriptFilename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApp()
			tt.mutate(&app)
			err := (&Catalog{Apps: []App{app}}).Validate(platform.Linux)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "expected ValidateErrors, got %v", err)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidate_EmptyCatalog(t *testing.T) {
	assert.Error(t, (&Catalog{}).Validate(platform.Linux))
	var nilCat *Catalog
	assert.Error(t, nilCat.Validate(platform.Linux))
}

func TestMenuLookups(t *testing.T) {
	app := validApp()
	app.Configurations = []ConfigSpec{{ShortConfigName: "one"}, {ShortConfigName: "two"}}
	cat := &Catalog{Apps: []App{app}}

	_, ok := cat.App(0)
	assert.False(t, ok)
	got, ok := cat.App(1)
	assert.True(t, ok)
	assert.Equal(t, "Short", got.ShortAppName)
	_, ok = cat.App(2)
	assert.False(t, ok)

	_, ok = app.Configuration(0)
	assert.False(t, ok)
	cfg, ok := app.Configuration(2)
	assert.True(t, ok)
	assert.Equal(t, "two", cfg.ShortConfigName)
}

package loader

import (
	"errors"
	"io/fs"
	"reflect"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"flags/usa.svg":                    {Data: []byte("<svg id=\"usa\"></svg>")},
		"currencies/default/usd.json":      {Data: []byte(`{"name":"United States dollar"}`)},
		"currencies/default/eur.json":      {Data: []byte(`{"name":"Euro"}`)},
		"currencies/default/readme.txt":    {Data: []byte("ignored")},
		"currencies/default/nested/x.json": {Data: []byte(`{}`)},
		"broken/bad.json":                  {Data: []byte(`{"name": `)},
	}
}

func TestLoadFile(t *testing.T) {
	l := New(testFS())

	text, err := l.LoadFile("flags/usa.svg")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if text != "<svg id=\"usa\"></svg>" {
		t.Fatalf("unexpected contents %q", text)
	}

	_, err = l.LoadFile("flags/zzz.svg")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Path != "flags/zzz.svg" {
		t.Fatalf("expected path on error, got %q", notFound.Path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected error to wrap fs.ErrNotExist")
	}
}

func TestLoadJSONParseError(t *testing.T) {
	l := New(testFS())

	_, err := l.LoadJSON("broken/bad.json")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Path != "broken/bad.json" {
		t.Fatalf("unexpected path %q", parseErr.Path)
	}
}

func TestLoadJSONFiles(t *testing.T) {
	l := New(testFS())

	got, err := l.LoadJSONFiles("currencies/default")
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if want := []string{"EUR", "USD"}; !reflect.DeepEqual(want, got.Keys()) {
		t.Fatalf("expected keys %v, got %v", want, got.Keys())
	}
	usd, _ := got.Get("USD")
	if usd.(map[string]any)["name"] != "United States dollar" {
		t.Fatalf("unexpected USD payload %#v", usd)
	}
}

func TestLoadJSONFilesMissingDirectory(t *testing.T) {
	l := New(testFS())

	got, err := l.LoadJSONFiles("countries/overload")
	if err != nil {
		t.Fatalf("expected missing directory to be ignored, got %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected empty map, got %v", got.Keys())
	}
}

func TestLoadJSONFilesSurfacesParseErrors(t *testing.T) {
	l := New(testFS())

	if _, err := l.LoadJSONFiles("broken"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFileKey(t *testing.T) {
	cases := map[string]string{
		"us.json":     "US",
		"usa.JSON":    "USA",
		"gb-sct.json": "GB-SCT",
	}
	for name, want := range cases {
		if got := FileKey(name); got != want {
			t.Errorf("FileKey(%q) = %q, want %q", name, got, want)
		}
	}
}

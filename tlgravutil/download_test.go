/*
Copyright © 2018 the TLGrav authors.
This file is part of TLGrav.

TLGrav is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TLGrav is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TLGrav.  If not, see <http://www.gnu.org/licenses/>.
*/


package tlgravutil

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestMaybeDownloadLocal(t *testing.T) {
	for _, path := range []string{"/dev/null", "/blah/test/"} {
		k, err := maybeDownload(context.Background(), path, logrus.StandardLogger())
		if err != nil {
			t.Fatal(err)
		}
		if k != path {
			t.Errorf("Expected %s, got %s", path, k)
		}
	}
}

func TestMaybeDownloadRemoteFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if _, err := maybeDownload(context.Background(), srv.URL+"/test.ncf", logrus.StandardLogger()); err == nil {
		t.Error("missing remote file should be an error")
	}
}

func TestMaybeDownloadNotRetried(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()
	logger, hook := test.NewNullLogger()
	if _, err := maybeDownload(context.Background(), srv.URL+"/test.ncf", logger); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("want 404 error, have %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("client errors should not be retried: %d requests", n)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected log entries: %v", hook.AllEntries())
	}
}

func TestMaybeDownloadRetry(t *testing.T) {
	dir := tempDir(t)
	if err := ioutil.WriteFile(filepath.Join(dir, "test.ncf"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	files := http.FileServer(http.Dir(dir))
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		files.ServeHTTP(w, r)
	}))
	defer srv.Close()

	logger, hook := test.NewNullLogger()
	k, err := maybeDownload(context.Background(), srv.URL+"/test.ncf", logger)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "data" {
		t.Errorf("have contents %q", b)
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("have %d requests, want 2", n)
	}
	entries := hook.AllEntries()
	if len(entries) != 1 || entries[0].Level != logrus.WarnLevel {
		t.Fatalf("want one retry warning, have %v", entries)
	}
	if err, ok := entries[0].Data[logrus.ErrorKey].(error); !ok || !strings.Contains(err.Error(), "503") {
		t.Errorf("warning should carry the server error, have %v", entries[0].Data)
	}
}

func TestMaybeDownloadCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	logger, _ := test.NewNullLogger()
	if _, err := maybeDownload(ctx, srv.URL+"/test.ncf", logger); err == nil {
		t.Error("download should stop when the context is done")
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	dir := tempDir(t)
	writeStations(t, filepath.Join(dir, "stations.shp"), "+proj=longlat", []stationRow{
		{Point: geom.Point{X: 1, Y: 2}, Name: "A"},
	})
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	k, err := maybeDownload(context.Background(), srv.URL+"/stations.shp", logrus.StandardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(k, "stations.shp") || strings.HasPrefix(k, "http") {
		t.Errorf("Expected tempDir/stations.shp, got %s", k)
	}
	for _, ext := range []string{".dbf", ".shx", ".prj"} {
		if _, err := ioutil.ReadFile(strings.TrimSuffix(k, ".shp") + ext); err != nil {
			t.Error(err)
		}
	}
	s, err := ReadStations(k, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 1 || s[0].Name != "A" {
		t.Errorf("have stations %+v", s)
	}
}

func TestExpandShp(t *testing.T) {
	if have, want := expandShp("a/b.shp"), []string{"a/b.shp", "a/b.dbf", "a/b.shx", "a/b.prj"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := expandShp("a/b.ncf"), []string{"a/b.ncf"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

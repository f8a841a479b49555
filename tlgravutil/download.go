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
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maybeDownload downloads the file at path if it is an http(s) URL
// and returns the local location of the file. Other paths are returned
// unchanged.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, log)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL, along with the
// shapefile sidecar files if it is a shapefile, and returns
// the path to the downloaded file.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	dir, err := ioutil.TempDir("", "tlgrav")
	if err != nil {
		return "", fmt.Errorf("tlgravutil: creating temporary download directory: %v", err)
	}
	fnames := expandShp(path)
	for _, fname := range fnames {
		if err := downloadFile(ctx, fname, filepath.Join(dir, filepath.Base(fname)), log); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

// downloadFile copies url to dest. Connection failures and server
// errors are retried with exponential backoff until ctx is done.
func downloadFile(ctx context.Context, url, dest string, log logrus.FieldLogger) error {
	return backoff.RetryNotify(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("tlgravutil: downloading %s: %v", url, err))
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("tlgravutil: downloading %s: %v", url, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				err = fmt.Errorf("tlgravutil: downloading %s: %s", url, resp.Status)
				if resp.StatusCode < 500 {
					return backoff.Permanent(err)
				}
				return err
			}
			w, err := os.Create(dest)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("tlgravutil: creating file for download: %v", err))
			}
			if _, err = io.Copy(w, resp.Body); err != nil {
				w.Close()
				return fmt.Errorf("tlgravutil: downloading %s: %v", url, err)
			}
			return w.Close()
		},
		backoff.WithContext(backoff.NewExponentialBackOff(), ctx),
		func(err error, d time.Duration) {
			log.WithError(err).WithField("retry_in", d).Warn("tlgrav: download failed")
		},
	)
}

// expandShp returns the given filename and, if it is a shapefile,
// the names of the files that go along with it.
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}

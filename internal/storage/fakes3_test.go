package storage

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeS3 is a path-style S3 endpoint that knows just enough of the API for
// MinioStorage: bucket head/create/location, single-part put, head/get
// object, ListObjectsV2 and multi-object delete.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string]s3Object
}

type s3Object struct {
	data        []byte
	contentType string
	modified    time.Time
}

func (o s3Object) etag() string {
	sum := md5.Sum(o.data)
	return hex.EncodeToString(sum[:])
}

type s3Entry struct {
	Key          string
	LastModified time.Time
	ETag         string
	Size         int64
}

type s3Prefix struct {
	Prefix string
}

type s3ListResult struct {
	XMLName        xml.Name `xml:"ListBucketResult"`
	Name           string
	Prefix         string
	Delimiter      string
	KeyCount       int
	MaxKeys        int
	IsTruncated    bool
	Contents       []s3Entry
	CommonPrefixes []s3Prefix
}

// newFakeS3 starts the endpoint with the given buckets already created.
func newFakeS3(t *testing.T, buckets ...string) (*fakeS3, string) {
	t.Helper()
	f := &fakeS3{buckets: make(map[string]map[string]s3Object)}
	for _, b := range buckets {
		f.buckets[b] = make(map[string]s3Object)
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, strings.TrimPrefix(srv.URL, "http://")
}

func (f *fakeS3) put(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket][key] = s3Object{data: data, contentType: "application/octet-stream", modified: time.Now().UTC()}
}

func (f *fakeS3) object(bucket, key string) (s3Object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.buckets[bucket][key]
	return obj, ok
}

func (f *fakeS3) keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.buckets[bucket]))
	for k := range f.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *fakeS3) hasBucket(bucket string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.buckets[bucket]
	return ok
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	q := r.URL.Query()

	if key == "" && q.Has("location") {
		writeXML(w, struct {
			XMLName xml.Name `xml:"LocationConstraint"`
			Region  string   `xml:",chardata"`
		}{Region: "us-east-1"})
		return
	}

	objects, exists := f.buckets[bucket]
	switch {
	case key == "" && r.Method == http.MethodPut:
		if !exists {
			f.buckets[bucket] = make(map[string]s3Object)
		}
		w.WriteHeader(http.StatusOK)
	case !exists:
		// an empty 404 reads as NoSuchBucket for bucket requests and
		// NoSuchKey for object requests
		w.WriteHeader(http.StatusNotFound)
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodGet && q.Get("list-type") == "2":
		writeXML(w, listObjects(bucket, objects, q.Get("prefix"), q.Get("delimiter")))
	case key == "" && r.Method == http.MethodPost && q.Has("delete"):
		var req struct {
			Objects []struct{ Key string } `xml:"Object"`
		}
		if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, o := range req.Objects {
			delete(objects, o.Key)
		}
		writeXML(w, struct {
			XMLName xml.Name `xml:"DeleteResult"`
		}{})
	case key != "" && r.Method == http.MethodPut:
		data, err := readPayload(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		obj := s3Object{data: data, contentType: r.Header.Get("Content-Type"), modified: time.Now().UTC()}
		objects[key] = obj
		w.Header().Set("ETag", `"`+obj.etag()+`"`)
		w.WriteHeader(http.StatusOK)
	case key != "" && (r.Method == http.MethodHead || r.Method == http.MethodGet):
		obj, ok := objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("Last-Modified", obj.modified.Format(http.TimeFormat))
		w.Header().Set("ETag", `"`+obj.etag()+`"`)
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.data)
		}
	default:
		http.Error(w, fmt.Sprintf("unsupported %s %s", r.Method, r.URL), http.StatusMethodNotAllowed)
	}
}

func listObjects(bucket string, objects map[string]s3Object, prefix, delimiter string) s3ListResult {
	res := s3ListResult{Name: bucket, Prefix: prefix, Delimiter: delimiter, MaxKeys: 1000}

	keys := make([]string, 0, len(objects))
	for k := range objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	seen := make(map[string]bool)
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				p := prefix + rest[:i+len(delimiter)]
				if !seen[p] {
					seen[p] = true
					res.CommonPrefixes = append(res.CommonPrefixes, s3Prefix{Prefix: p})
				}
				continue
			}
		}
		obj := objects[k]
		res.Contents = append(res.Contents, s3Entry{
			Key:          k,
			LastModified: obj.modified,
			ETag:         `"` + obj.etag() + `"`,
			Size:         int64(len(obj.data)),
		})
	}
	res.KeyCount = len(res.Contents) + len(res.CommonPrefixes)
	return res
}

// readPayload returns the object bytes of a PUT, undoing the aws-chunked
// framing minio-go uses for signed uploads over plain HTTP.
func readPayload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
		return io.ReadAll(r.Body)
	}

	br := bufio.NewReader(r.Body)
	var out bytes.Buffer
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		n, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("chunk header %q: %w", line, err)
		}
		if n == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, n); err != nil {
			return nil, err
		}
		if _, err := br.Discard(2); err != nil {
			return nil, err
		}
	}
}

func writeXML(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_ = xml.NewEncoder(w).Encode(v)
}

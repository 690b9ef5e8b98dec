package view

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/views"
)

func TestLoadFromFS(t *testing.T) {
	src := NewFSSource(fstest.MapFS{
		"MainPage.html": {Data: []byte("<h1>main</h1>")},
	})

	v, err := Load(context.Background(), src, "MainPage.html")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v.Name != "MainPage" {
		t.Errorf("Name = %q, want MainPage", v.Name)
	}
	if string(v.Body) != "<h1>main</h1>" {
		t.Errorf("Body = %q", v.Body)
	}
	if !strings.HasPrefix(v.ContentType, "text/html") {
		t.Errorf("ContentType = %q, want text/html", v.ContentType)
	}
	if v.LoadedAt.IsZero() {
		t.Error("LoadedAt should be set")
	}
}

func TestLoadMissingBundle(t *testing.T) {
	src := NewFSSource(fstest.MapFS{})

	_, err := Load(context.Background(), src, "Gallery.html")
	if err == nil {
		t.Fatal("expected error for missing bundle")
	}
	if errors.Code(err) != "V002" {
		t.Errorf("code = %q, want V002", errors.Code(err))
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Error("error should wrap ErrNotFound")
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, NewFSSource(views.FS()), views.MainPage)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadNilSource(t *testing.T) {
	_, err := Load(context.Background(), nil, "x.html")
	if errors.Code(err) != "V001" {
		t.Errorf("code = %q, want V001", errors.Code(err))
	}
}

func TestFSSourceRejectsInvalidNames(t *testing.T) {
	src := NewFSSource(fstest.MapFS{})
	if _, err := src.Open(context.Background(), "../secret.html"); err == nil {
		t.Error("expected error for path escaping the source")
	}
}

func TestNewLoaderReadsEachCall(t *testing.T) {
	fsys := fstest.MapFS{"A.html": {Data: []byte("one")}}
	load := NewLoader(NewFSSource(fsys), "A.html")

	first, err := load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	fsys["A.html"] = &fstest.MapFile{Data: []byte("two")}
	second, err := load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(first.Body) != "one" || string(second.Body) != "two" {
		t.Errorf("bodies = %q, %q", first.Body, second.Body)
	}
}

func TestEmbeddedBundles(t *testing.T) {
	src := NewFSSource(views.FS())
	for _, file := range []string{views.MainPage, views.FractalsPage} {
		v, err := Load(context.Background(), src, file)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", file, err)
		}
		if !bytes.Contains(v.Body, []byte(`data-view="`+v.Name+`"`)) {
			t.Errorf("%s body does not declare its view name", file)
		}
	}
}

type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type failingS3 struct{}

func (failingS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"assets/views/FractalsPage.html": "<canvas></canvas>",
	}}
	src := NewS3Source(client, "assets", "views")

	if got := src.Key("/FractalsPage.html"); got != "views/FractalsPage.html" {
		t.Errorf("Key() = %q", got)
	}

	v, err := Load(context.Background(), src, "FractalsPage.html")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(v.Body) != "<canvas></canvas>" {
		t.Errorf("Body = %q", v.Body)
	}

	_, err = Load(context.Background(), src, "Missing.html")
	if errors.Code(err) != "V002" {
		t.Errorf("missing object code = %q, want V002", errors.Code(err))
	}
}

func TestS3SourceTransportError(t *testing.T) {
	_, err := Load(context.Background(), NewS3Source(failingS3{}, "b", ""), "A.html")
	if errors.Code(err) != "V001" {
		t.Errorf("code = %q, want V001", errors.Code(err))
	}
	if stderrors.Is(err, ErrNotFound) {
		t.Error("transport errors must not look like missing bundles")
	}
}

func TestEnvCredentials(t *testing.T) {
	anon := envCredentials(func(string) string { return "" })
	if _, ok := anon.(aws.AnonymousCredentials); !ok {
		t.Errorf("expected anonymous credentials, got %T", anon)
	}

	env := map[string]string{
		"AWS_ACCESS_KEY_ID":     "AKID",
		"AWS_SECRET_ACCESS_KEY": "SECRET",
	}
	creds, err := envCredentials(func(k string) string { return env[k] }).Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "SECRET" {
		t.Errorf("unexpected credentials %+v", creds)
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("bundle.unknownext"); got != DefaultContentType {
		t.Errorf("ContentType() = %q, want default", got)
	}
	if got := Name("nested/FractalsPage.html"); got != "FractalsPage" {
		t.Errorf("Name() = %q", got)
	}
}

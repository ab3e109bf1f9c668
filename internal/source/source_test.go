package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	body   string
	length *int64
	input  *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(f.body)),
		ContentLength: f.length,
	}, nil
}

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestOpenLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bol.txt")
	require.NoError(t, os.WriteFile(path, []byte("Order #: 901234"), 0o600))

	doc, err := NewOpener(10, nil, nil).Open(context.Background(), path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "bol.txt", doc.Name)
	assert.Equal(t, "txt", doc.Ext)
	assert.Equal(t, int64(15), doc.Size)
	assert.Equal(t, sha("Order #: 901234"), doc.HashHex)
}

func TestOpenLocalErrors(t *testing.T) {
	dir := t.TempDir()
	o := NewOpener(1, nil, nil)

	_, err := o.Open(context.Background(), filepath.Join(dir, "bol.docx"))
	assert.ErrorIs(t, err, ErrUnsupportedExt)

	_, err = o.Open(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)

	big := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(big, make([]byte, (1<<20)+1), 0o600))
	_, err = o.Open(context.Background(), big)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestOpenS3(t *testing.T) {
	s3c := &fakeS3{body: "Order #: 901234"}
	doc, err := NewOpener(10, s3c, nil).Open(context.Background(), "s3://intake/2025/03/bol.txt")
	require.NoError(t, err)

	assert.Equal(t, "intake", aws.ToString(s3c.input.Bucket))
	assert.Equal(t, "2025/03/bol.txt", aws.ToString(s3c.input.Key))
	assert.Equal(t, "bol.txt", doc.Name)
	assert.Equal(t, sha("Order #: 901234"), doc.HashHex)

	b, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "Order #: 901234", string(b))

	require.NoError(t, doc.Close())
	_, err = os.Stat(doc.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenS3TooLarge(t *testing.T) {
	body := strings.Repeat("x", (1<<20)+10)
	_, err := NewOpener(1, &fakeS3{body: body}, nil).Open(context.Background(), "s3://intake/big.pdf")
	assert.ErrorIs(t, err, ErrTooLarge)

	n := int64(len(body))
	_, err = NewOpener(1, &fakeS3{body: body, length: &n}, nil).Open(context.Background(), "s3://intake/big.pdf")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestOpenS3NotConfigured(t *testing.T) {
	_, err := NewOpener(10, nil, nil).Open(context.Background(), "s3://intake/bol.pdf")
	assert.ErrorIs(t, err, ErrNoS3)
}

func TestParseS3URI(t *testing.T) {
	b, k, ok := ParseS3URI("s3://bucket/a/b.pdf")
	assert.True(t, ok)
	assert.Equal(t, "bucket", b)
	assert.Equal(t, "a/b.pdf", k)

	for _, uri := range []string{"/tmp/b.pdf", "s3://bucket", "s3:///key.pdf", "s3://bucket/"} {
		_, _, ok := ParseS3URI(uri)
		assert.False(t, ok, uri)
	}
}

func TestWalkDir(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"b.pdf", "a.png", "notes.docx", ".hidden/c.pdf", "sub/d.txt"} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o600))
	}

	got, err := WalkDir(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "d.txt"),
	}, got)

	all, err := WalkDir(root, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

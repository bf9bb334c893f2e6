package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/api/option"
)

var _ = Describe("GCSBucket", func() {
	ctx := context.Background()
	var dataDir string

	gcsOptions := []option.ClientOption{
		option.WithEndpoint("http://localhost:4443/storage/v1/"),
		option.WithoutAuthentication(),
	}

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "")
		Expect(err).NotTo(HaveOccurred())
		err = os.Mkdir(filepath.Join(dir, "test"), os.ModePerm)
		Expect(err).NotTo(HaveOccurred())
		dataDir = dir
		err = exec.Command("docker", "run", "--rm", "--name=sampler-fake-gcs", "-d", "-p", "4443:4443",
			"-v", fmt.Sprintf("%s:/data", dir),
			"fsouza/fake-gcs-server", "-scheme", "http", "-public-host=localhost:4443", "-port=4443").Run()
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() error {
			client, err := storage.NewClient(ctx, gcsOptions...)
			if err != nil {
				return err
			}
			defer client.Close()
			_, err = client.Bucket("test").Attrs(ctx)
			return err
		}, 60).Should(Succeed())
	})

	AfterEach(func() {
		exec.Command("docker", "kill", "sampler-fake-gcs").Run()
		time.Sleep(1 * time.Second)
		os.RemoveAll(dataDir)
	})

	It("should put and get objects", func() {
		b, err := NewGCSBucket(ctx, "test", gcsOptions...)
		Expect(err).NotTo(HaveOccurred())

		err = b.Put(ctx, "foo/bar.png", strings.NewReader("01234567890123456789"), 128<<20)
		Expect(err).NotTo(HaveOccurred())

		r, err := b.Get(ctx, "foo/bar.png")
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		data, err := io.ReadAll(r)
		Expect(err).NotTo(HaveOccurred())

		Expect(data).To(Equal([]byte("01234567890123456789")))

		for i := 0; i < 1100; i++ {
			err = b.Put(ctx, fmt.Sprintf("foo/baz%d", i), strings.NewReader("01234567890123456789"), 128<<20)
			Expect(err).NotTo(HaveOccurred())
		}

		keys, err := b.List(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(HaveLen(1101))

		keys, err = b.List(ctx, "foo/bar")
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(HaveLen(1))

		keys, err = b.List(ctx, "nothing/")
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(BeEmpty())
	})

	It("should report missing objects as not found", func() {
		b, err := NewGCSBucket(ctx, "test", gcsOptions...)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.Get(ctx, "no-such-key")
		Expect(errors.Is(err, ErrNotFound)).To(BeTrue(), "%v", err)
	})
})

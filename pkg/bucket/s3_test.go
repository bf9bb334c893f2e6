package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("S3Bucket", func() {
	ctx := context.Background()
	var dataDir string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "")
		Expect(err).NotTo(HaveOccurred())
		dataDir = dir
		err = exec.Command("docker", "run", "--rm", "--name=sampler-minio", "-d", "-p", "9000:9000",
			"-v", fmt.Sprintf("%s:/data", dir),
			"minio/minio", "server", "/data").Run()
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() error {
			conn, err := net.Dial("tcp", "localhost:9000")
			if err != nil {
				return err
			}
			conn.Close()
			return nil
		}, 60).Should(Succeed())

		cfg, err := config.LoadDefaultConfig(ctx, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
				Source:          "minio default credentials",
			},
		}))
		Expect(err).NotTo(HaveOccurred())
		client := s3.NewFromConfig(cfg,
			WithEndpointURL("http://localhost:9000"),
			WithPathStyle(),
		)

		Eventually(func() error {
			_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: aws.String("test"),
			})
			return err
		}, 30).Should(Succeed())
	})

	AfterEach(func() {
		exec.Command("docker", "kill", "sampler-minio").Run()
		time.Sleep(1 * time.Second)
		os.RemoveAll(dataDir)
	})

	newBucket := func(name string) Bucket {
		b, err := NewS3Bucket(ctx, name,
			WithStaticCredentials("minioadmin", "minioadmin"),
			WithRegion("us-east-1"),
			WithEndpointURL("http://localhost:9000"),
			WithPathStyle(),
		)
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	It("should put and get objects", func() {
		b := newBucket("test")

		err := b.Put(ctx, "foo/bar", strings.NewReader("01234567890123456789"), 128<<20)
		Expect(err).NotTo(HaveOccurred())

		r, err := b.Get(ctx, "foo/bar")
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		data, err := io.ReadAll(r)
		Expect(err).NotTo(HaveOccurred())

		Expect(data).To(Equal([]byte("01234567890123456789")))

		// more than a single ListObjectsV2 page
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
	})

	It("should list no keys when prefix matches nothing", func() {
		b := newBucket("test")

		err := b.Put(ctx, "foo/bar", strings.NewReader("content"), 128<<20)
		Expect(err).NotTo(HaveOccurred())

		keys, err := b.List(ctx, "baz/")
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(BeEmpty())
	})

	It("should report missing keys and buckets as not found", func() {
		b := newBucket("test")

		_, err := b.Get(ctx, "no-such-key")
		Expect(errors.Is(err, ErrNotFound)).To(BeTrue(), "%v", err)

		_, err = newBucket("no-such-bucket").List(ctx, "")
		Expect(errors.Is(err, ErrNotFound)).To(BeTrue(), "%v", err)
	})

	It("should report an expired deadline as timeout", func() {
		b := newBucket("test")

		tctx, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		_, err := b.List(tctx, "")
		Expect(errors.Is(err, ErrTimeout)).To(BeTrue(), "%v", err)
	})

	It("should put unseekable objects", func() {
		b := newBucket("test")

		dateCmd := exec.Command("date")
		pr, pw, err := os.Pipe()
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			if pr != nil {
				pr.Close()
			}
			if pw != nil {
				pw.Close()
			}
		}()
		dateCmd.Stdout = pw
		err = dateCmd.Start()
		Expect(err).NotTo(HaveOccurred())
		pw.Close()
		pw = nil

		err = b.Put(ctx, "date", io.TeeReader(pr, io.Discard), 128<<20)
		Expect(err).NotTo(HaveOccurred())

		dateCmd.Wait()

		r, err := b.Get(ctx, "date")
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		data, err := io.ReadAll(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).NotTo(BeEmpty())
	})

	It("should calculate the partSize correctly", func() {
		partSize := decidePartSize(600 << 30)
		Expect(partSize).Should(BeNumerically("==", DefaultPartSize))

		partSize = decidePartSize(700 << 30)
		Expect(partSize).Should(BeNumerically("==", 200<<20))
	})
})

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clipforge/pkg/config"
)

// Provisions the S3 bucket for merged videos and thumbnails: creates it
// when missing, applies a public-read policy for the published paths and
// verifies the access key can write.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	s3 := cfg.Storage.S3

	fmt.Println("--- ClipForge Bucket Setup ---")
	fmt.Printf("Endpoint: %s\n", s3.Endpoint)
	fmt.Printf("Bucket:   %s\n", s3.Bucket)
	fmt.Printf("Region:   %s\n", s3.Region)

	client, err := minio.New(s3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3.AccessKey, s3.SecretKey, ""),
		Secure: s3.UseSSL,
		Region: s3.Region,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, s3.Bucket)
	if err != nil {
		log.Fatalf("Failed to check bucket: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s3.Bucket, minio.MakeBucketOptions{Region: s3.Region}); err != nil {
			log.Fatalf("Failed to create bucket '%s': %v", s3.Bucket, err)
		}
		fmt.Printf("Created bucket '%s'\n", s3.Bucket)
	} else {
		fmt.Printf("Bucket '%s' exists\n", s3.Bucket)
	}

	// Merged videos and thumbnails are served directly from the bucket
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Sid":       "PublicReadArtifacts",
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    []string{"s3:GetObject"},
				"Resource": []string{
					fmt.Sprintf("arn:aws:s3:::%s/merged_videos/*", s3.Bucket),
					fmt.Sprintf("arn:aws:s3:::%s/thumbnails/*", s3.Bucket),
				},
			},
		},
	}
	policyJSON, _ := json.Marshal(policy)
	if err := client.SetBucketPolicy(ctx, s3.Bucket, string(policyJSON)); err != nil {
		log.Printf("Warning: failed to set bucket policy: %v", err)
	} else {
		fmt.Println("Bucket policy applied")
	}

	// Round-trip a small object to surface permission problems now
	// instead of at the end of a merge.
	fmt.Print("Testing PutObject... ")
	probe := []byte("clipforge write probe")
	_, err = client.PutObject(ctx, s3.Bucket, "test/write-probe.txt",
		bytes.NewReader(probe), int64(len(probe)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		log.Fatalf("failed: %v", err)
	}
	fmt.Println("OK")
	client.RemoveObject(ctx, s3.Bucket, "test/write-probe.txt", minio.RemoveObjectOptions{})

	fmt.Println("Setup complete")
}

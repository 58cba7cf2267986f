package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"tourzen-backend/internal/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	galleryPrefix  = "gallery/"
	packagesPrefix = "packages/"
	presignExpiry  = 5 * time.Minute
)

// GalleryImage is one image served on the public gallery
type GalleryImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadResponse carries a pre-signed PUT URL for a package image upload
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GalleryService serves gallery images and pre-signed package image uploads
// from S3.
type GalleryService struct {
	s3Client *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewGalleryService creates a gallery service backed by S3 or an
// S3-compatible endpoint.
func NewGalleryService(region, bucket, accessKey, secretKey, endpoint string) (*GalleryService, error) {
	cfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(region),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &GalleryService{
		s3Client: client,
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}, nil
}

// GalleryImages lists the images under the gallery prefix
func (s *GalleryService) GalleryImages(ctx context.Context) ([]GalleryImage, error) {
	out, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(galleryPrefix),
	})
	if err != nil {
		return nil, apperr.Upstream("image storage unavailable", err)
	}

	images := []GalleryImage{}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if key == galleryPrefix {
			continue
		}
		images = append(images, GalleryImage{Key: key, URL: s.publicURL(key)})
	}
	return images, nil
}

// PresignUpload returns a pre-signed PUT URL a guide can upload a package
// image to, plus the public URL to store on the package.
func (s *GalleryService) PresignUpload(ctx context.Context, filename, contentType string) (*UploadResponse, error) {
	if filename == "" {
		return nil, apperr.Validation("filename is required")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s%s%s", packagesPrefix, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return nil, apperr.Upstream("failed to generate upload URL", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		ImageURL:  s.publicURL(key),
		ExpiresIn: int(presignExpiry.Seconds()),
	}, nil
}

func (s *GalleryService) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

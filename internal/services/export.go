package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	sc "github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/netx"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const uploadURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	uploadObject = netx.UploadToPresignedURL
)

// Exporter turns a subject's history into a downloadable link.
type Exporter interface {
	Export(ctx context.Context, chatID int64, entries []*models.LogEntry) (string, error)
}

// ExportService writes the history as CSV to S3 compatible storage through
// a presigned PUT and hands back a presigned GET link.
type ExportService struct {
	config *sc.Config
}

func NewExportService(config *sc.Config) *ExportService {
	return &ExportService{config: config}
}

// ExportKey builds a unique object key for one export of chatID.
func ExportKey(chatID int64, now time.Time) string {
	return fmt.Sprintf("exports/%d/%s/%v.csv", chatID, now.Format("2006-01-02"), uuid.New())
}

// EncodeCSV renders entries as date,phase,units,note rows.
func EncodeCSV(entries []*models.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "phase", "units", "note"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		units, note := "", ""
		if e.Units != nil {
			units = strconv.Itoa(*e.Units)
		}
		if e.Note != nil {
			note = *e.Note
		}
		if err := w.Write([]string{timex.FormatDate(e.Date), string(e.Phase), units, note}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// Export returns common.ErrorNotConfigured when no bucket is set.
func (s *ExportService) Export(ctx context.Context, chatID int64, entries []*models.LogEntry) (string, error) {
	if s.config.S3Bucket == "" {
		return "", common.ErrorNotConfigured
	}

	body, err := EncodeCSV(entries)
	if err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := ExportKey(chatID, time.Now())

	put, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String("text/csv"),
	}, s3.WithPresignExpires(uploadURLValidity))
	if err != nil {
		return "", err
	}

	if err := uploadObject(ctx, put.URL, "text/csv", body); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	get, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportLinkTTL))
	if err != nil {
		return "", err
	}

	return get.URL, nil
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/logging"
	"github.com/kentxun/anymind/internal/timex"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// BackupConfig points at an S3-compatible bucket. Static keys are optional;
// without them the default AWS credential chain is used.
type BackupConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	AccessKey string
	SecretKey string
	DeviceID  string
}

func (c BackupConfig) Configured() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// SnapshotVersion is bumped whenever the snapshot document changes shape.
const SnapshotVersion = 1

// Snapshot is the JSON document written by Backup.
type Snapshot struct {
	Version   int              `json:"version"`
	DeviceID  string           `json:"device_id"`
	CreatedAt string           `json:"created_at"`
	Records   []SnapshotRecord `json:"records"`
}

type SnapshotRecord struct {
	ID                 string   `json:"id"`
	Content            string   `json:"content"`
	SystemTags         []string `json:"system_tags"`
	UserTags           []string `json:"user_tags"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
	WeekKey            string   `json:"week_key"`
	Deleted            bool     `json:"deleted"`
	LocalVersion       int64    `json:"local_version"`
	ServerRev          *int64   `json:"server_rev"`
	LastSyncAt         *string  `json:"last_sync_at"`
	SyncEnabled        bool     `json:"sync_enabled"`
	CloudDeletePending bool     `json:"cloud_delete_pending"`
}

// Exporter lists every record, tombstones included.
type Exporter interface {
	ExportRecords(ctx context.Context) ([]models.Record, error)
}

// BackupService uploads JSON snapshots of the local store.
type BackupService struct {
	store Exporter
	cfg   BackupConfig
	log   logging.Logger
	now   func() time.Time
}

func NewBackupService(store Exporter, cfg BackupConfig, log logging.Logger) *BackupService {
	return &BackupService{store: store, cfg: cfg, log: log, now: time.Now}
}

// ObjectKey returns <prefix>/<device>/<yyyy>/<mm>/<dd>/<uuid>.json.
func ObjectKey(prefix, deviceID string, at time.Time) string {
	at = at.UTC()
	device := deviceID
	if device == "" {
		device = "unknown-device"
	}
	key := fmt.Sprintf("%s/%04d/%02d/%02d/%s.json", device, at.Year(), at.Month(), at.Day(), uuid.NewString())
	if p := strings.Trim(prefix, "/"); p != "" {
		key = p + "/" + key
	}
	return key
}

// BuildSnapshot serializes the store.
func (s *BackupService) BuildSnapshot(ctx context.Context) (*Snapshot, error) {
	recs, err := s.store.ExportRecords(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Version:   SnapshotVersion,
		DeviceID:  s.cfg.DeviceID,
		CreatedAt: timex.Format(s.now()),
		Records:   make([]SnapshotRecord, 0, len(recs)),
	}
	for _, r := range recs {
		snap.Records = append(snap.Records, SnapshotRecord{
			ID:                 r.ID,
			Content:            r.Content,
			SystemTags:         r.SystemTags,
			UserTags:           r.UserTags,
			CreatedAt:          timex.Format(r.CreatedAt),
			UpdatedAt:          timex.Format(r.UpdatedAt),
			WeekKey:            r.WeekKey,
			Deleted:            r.Deleted,
			LocalVersion:       r.LocalVersion,
			ServerRev:          r.ServerRev,
			LastSyncAt:         timex.FormatOptional(r.LastSyncAt),
			SyncEnabled:        r.SyncEnabled,
			CloudDeletePending: r.CloudDeletePending,
		})
	}
	return snap, nil
}

func (s *BackupService) s3Client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if s.cfg.Region != "" {
		opts = append(opts, config.WithRegion(s.cfg.Region))
	}
	if s.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Backup uploads a snapshot and returns its object key.
func (s *BackupService) Backup(ctx context.Context) (string, error) {
	if !s.cfg.Configured() {
		return "", fmt.Errorf("backup bucket: %w", common.ErrSyncNotConfigured)
	}

	snap, err := s.BuildSnapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("error building snapshot: %w", err)
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("error encoding snapshot: %w", err)
	}

	c, err := s.s3Client(ctx)
	if err != nil {
		return "", fmt.Errorf("error configuring storage: %w", err)
	}

	key := ObjectKey(s.cfg.Prefix, s.cfg.DeviceID, s.now())
	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading snapshot: %w", err)
	}

	s.log.Info(ctx, "backup uploaded", "bucket", s.cfg.Bucket, "key", key, "records", len(snap.Records))
	return key, nil
}

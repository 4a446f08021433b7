package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"schooladmin_go/config"
	"schooladmin_go/database"
	"schooladmin_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const archiveMinAgeDays = 7

// LogArchiveService drains the Redis audit buffer into MySQL and moves
// aged rows out to zipped S3 archives.
type LogArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
}

func NewLogArchiveService() *LogArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(),
		awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("AWS config unavailable, archive uploads disabled")
	}

	return &LogArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// archiveEntry is one audit row as written into the archive files.
type archiveEntry struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Username   string         `json:"username,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uint           `json:"resource_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toArchiveEntry(log models.ActivityLog) archiveEntry {
	entry := archiveEntry{
		ID:         log.ID,
		UserID:     log.UserID,
		Action:     log.Action,
		Resource:   log.Resource,
		ResourceID: log.ResourceID,
		IPAddress:  log.IPAddress,
		UserAgent:  log.UserAgent,
		CreatedAt:  log.CreatedAt,
	}
	if len(log.Details) > 0 {
		var details map[string]any
		if err := json.Unmarshal(log.Details, &details); err == nil {
			entry.Details = details
		}
	}
	if log.User.ID > 0 {
		entry.Username = log.User.Username
	}
	return entry
}

// FlushCachedLogsToDatabase persists buffered audit entries older than
// the 24h window. Entries whose log:* key already expired are simply
// dropped from the queue.
func (las *LogArchiveService) FlushCachedLogsToDatabase() error {
	if las.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoff := time.Now().Add(-24 * time.Hour)

	keys, err := las.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("read log queue: %w", err)
	}

	var flushed, failed int
	for _, key := range keys {
		payload, err := las.redisClient.Get(ctx, key).Result()
		if err == redis.Nil {
			las.redisClient.ZRem(ctx, "logs:queue", key)
			continue
		}
		if err != nil {
			logrus.WithError(err).WithField("key", key).Error("failed to read buffered audit entry")
			failed++
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			logrus.WithError(err).WithField("key", key).Error("malformed buffered audit entry")
			failed++
			continue
		}
		if err := database.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Error("failed to persist buffered audit entry")
			failed++
			continue
		}

		pipe := las.redisClient.Pipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, "logs:queue", key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("flushed entry left in buffer")
		}
		flushed++
	}

	if flushed > 0 || failed > 0 {
		logrus.WithFields(logrus.Fields{"flushed": flushed, "failed": failed}).
			Info("audit buffer drained")
	}
	return nil
}

// ArchiveOldLogs zips every audit row older than daysOld, uploads the
// archive to S3 and deletes the rows. A LogArchive row records the
// upload for later download.
func (las *LogArchiveService) ArchiveOldLogs(daysOld int) error {
	if daysOld < archiveMinAgeDays {
		return fmt.Errorf("minimum archive age is %d days", archiveMinAgeDays)
	}
	cutoff := time.Now().AddDate(0, 0, -daysOld)

	entries, err := las.collectEntries(cutoff)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoff.Format("2006-01-02"))
	archive, err := buildArchive(entries, fileName)
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}

	key := fmt.Sprintf("logs/archived/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
	if err := las.uploadToS3(key, archive); err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}

	result := database.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("delete archived rows: %w", result.Error)
	}

	record := models.LogArchive{
		FileName:    fileName,
		S3Key:       key,
		StartDate:   entries[0].CreatedAt,
		EndDate:     cutoff,
		RecordCount: len(entries),
		FileSize:    int64(archive.Len()),
		Status:      "completed",
	}
	if err := database.DB.Create(&record).Error; err != nil {
		logrus.WithError(err).Error("failed to record archive metadata")
	}

	logrus.WithFields(logrus.Fields{
		"key":  key,
		"rows": result.RowsAffected,
	}).Info("audit logs archived")
	return nil
}

// collectEntries pages through rows older than cutoff, oldest first.
func (las *LogArchiveService) collectEntries(cutoff time.Time) ([]archiveEntry, error) {
	const batchSize = 1000

	var entries []archiveEntry
	for offset := 0; ; offset += batchSize {
		var logs []models.ActivityLog
		err := database.DB.
			Preload("User").
			Where("created_at < ?", cutoff).
			Order("created_at ASC").
			Limit(batchSize).
			Offset(offset).
			Find(&logs).Error
		if err != nil {
			return nil, fmt.Errorf("fetch rows to archive: %w", err)
		}
		if len(logs) == 0 {
			return entries, nil
		}
		for _, log := range logs {
			entries = append(entries, toArchiveEntry(log))
		}
	}
}

// buildArchive packs the entries into a zip with a JSON dump, a CSV
// rendering and a metadata file.
func buildArchive(entries []archiveEntry, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	jsonFile, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(jsonFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"export_date":  time.Now().UTC(),
		"record_count": len(entries),
		"logs":         entries,
	}); err != nil {
		return nil, err
	}

	csvFile, err := zw.Create("activity_logs.csv")
	if err != nil {
		return nil, err
	}
	if err := writeEntriesCSV(csvFile, entries); err != nil {
		return nil, err
	}

	metaFile, err := zw.Create("metadata.json")
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(metaFile).Encode(map[string]any{
		"file_name":    fileName,
		"created_at":   time.Now().UTC(),
		"record_count": len(entries),
		"date_range": map[string]any{
			"start": entries[0].CreatedAt,
			"end":   entries[len(entries)-1].CreatedAt,
		},
	}); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeEntriesCSV(w io.Writer, entries []archiveEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"id", "user_id", "username", "action", "resource", "resource_id",
		"ip_address", "user_agent", "created_at", "details",
	}); err != nil {
		return err
	}

	for _, e := range entries {
		details := ""
		if e.Details != nil {
			if b, err := json.Marshal(e.Details); err == nil {
				details = string(b)
			}
		}
		if err := cw.Write([]string{
			strconv.FormatUint(uint64(e.ID), 10),
			strconv.FormatUint(uint64(e.UserID), 10),
			e.Username,
			e.Action,
			e.Resource,
			strconv.FormatUint(uint64(e.ResourceID), 10),
			e.IPAddress,
			e.UserAgent,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			details,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (las *LogArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if las.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(config.AppConfig.S3BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	return err
}

func (las *LogArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if las.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	out, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(config.AppConfig.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// ListArchives returns the archive records, newest first.
func (las *LogArchiveService) ListArchives() ([]models.LogArchive, error) {
	var archives []models.LogArchive
	err := database.DB.Order("created_at DESC").Find(&archives).Error
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return archives, nil
}

// ErrArchiveNotFound reports an unknown archive ID.
var ErrArchiveNotFound = fmt.Errorf("archive not found")

// OpenArchive streams a stored archive back from S3. The caller closes
// the reader.
func (las *LogArchiveService) OpenArchive(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.LogArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", ErrArchiveNotFound
		}
		return nil, "", fmt.Errorf("load archive record: %w", err)
	}

	body, err := las.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", archive.S3Key, err)
	}
	return body, archive.FileName, nil
}

// RunMaintenance flushes cached logs and archives anything past the
// retention window. Scheduling lives in the cron manager.
func (las *LogArchiveService) RunMaintenance() {
	if err := las.FlushCachedLogsToDatabase(); err != nil {
		logrus.WithError(err).Warn("audit buffer flush failed")
	}
	if err := las.ArchiveOldLogs(30); err != nil {
		logrus.WithError(err).Warn("audit archive failed")
	}
}

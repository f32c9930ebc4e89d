package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"

	"designpad/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return &s3Store{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

// ShareStore implementation for anonymous sharing
func (s *s3Store) FindID(ctx context.Context, id string) (*core.SharedDesign, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String("shares/" + id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get shared design with id %s: %v", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read shared design data: %v", err)
	}

	return &core.SharedDesign{Data: data}, nil
}

func (s *s3Store) Create(ctx context.Context, shared *core.SharedDesign) (string, error) {
	id := ulid.Make().String()

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String("shares/" + id),
		Body:   bytes.NewReader(shared.Data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload shared design: %v", err)
	}

	return id, nil
}

// DesignStore implementation for user-owned designs
func (s *s3Store) designKey(userID, designID string) (string, error) {
	// Sanitize designID to prevent path traversal attacks.
	// It should be a simple name, not a path.
	if path.Base(designID) != designID {
		return "", fmt.Errorf("invalid design id: must not be a path")
	}
	if designID == "" || designID == "." || designID == ".." {
		return "", fmt.Errorf("invalid design id: must not be empty or a dot directory")
	}
	return path.Join("designs", userID, designID), nil
}

func (s *s3Store) List(ctx context.Context, userID string) ([]*core.Design, error) {
	prefix := path.Join("designs", userID) + "/"
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "prefix": prefix})

	designs := []*core.Design{}
	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list designs")
			return nil, fmt.Errorf("failed to list designs: %v", err)
		}
		for _, obj := range page.Contents {
			design, err := s.getByKey(ctx, *obj.Key)
			if err != nil {
				log.WithError(err).Warnf("Failed to read design object %s, skipping", *obj.Key)
				continue
			}
			// For list view, we don't need the full archive blob.
			design.Data = nil
			designs = append(designs, design)
		}
	}

	log.Infof("Listed %d designs", len(designs))
	return designs, nil
}

func (s *s3Store) getByKey(ctx context.Context, key string) (*core.Design, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var design core.Design
	if err := json.Unmarshal(data, &design); err != nil {
		return nil, err
	}
	if resp.LastModified != nil {
		design.UpdatedAt = *resp.LastModified
	}
	return &design, nil
}

func (s *s3Store) Get(ctx context.Context, userID, id string) (*core.Design, error) {
	key, err := s.designKey(userID, id)
	if err != nil {
		return nil, err
	}

	design, err := s.getByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("design %s not found: %v", id, err)
	}
	design.UserID = userID
	return design, nil
}

func (s *s3Store) Save(ctx context.Context, design *core.Design) error {
	key, err := s.designKey(design.UserID, design.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": design.UserID, "design_id": design.ID, "key": key})

	data, err := json.Marshal(design)
	if err != nil {
		log.WithError(err).Error("Failed to marshal design for saving")
		return err
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		log.WithError(err).Error("Failed to upload design")
		return fmt.Errorf("failed to upload design: %v", err)
	}

	log.Info("Design saved successfully")
	return nil
}

func (s *s3Store) Delete(ctx context.Context, userID, id string) error {
	key, err := s.designKey(userID, id)
	if err != nil {
		return err
	}

	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete design %s: %v", id, err)
	}
	return nil
}

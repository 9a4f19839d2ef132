package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSStorage mirrors snapshots to the cloud: payloads in S3, a listing
// index in DynamoDB.
type AWSStorage struct {
	dynamoDB *dynamodb.Client
	s3Client *s3.Client
	table    string
	bucket   string
}

// snapshotItem is the DynamoDB index row for one snapshot.
type snapshotItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	Name            string `dynamodbav:"Name"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
	S3Key           string `dynamodbav:"S3Key"`
	CampaignCount   int    `dynamodbav:"CampaignCount"`
	FlowCount       int    `dynamodbav:"FlowCount"`
	SubscriberCount int    `dynamodbav:"SubscriberCount"`
}

// NewAWSStorage builds the mirror from the shared AWS credential chain.
func NewAWSStorage(ctx context.Context, table, bucket, region, profile string) (*AWSStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &AWSStorage{
		dynamoDB: dynamodb.NewFromConfig(cfg),
		s3Client: s3.NewFromConfig(cfg),
		table:    table,
		bucket:   bucket,
	}, nil
}

// PutSnapshot uploads the encoded snapshot to S3 and writes its index row.
func (a *AWSStorage) PutSnapshot(ctx context.Context, snap *Snapshot, encoded []byte) error {
	key := s3Key(snap.ID)
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(encoded),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put snapshot to S3: %w", err)
	}

	item, err := attributevalue.MarshalMap(snapshotItem{
		PK:              "SNAPSHOT",
		SK:              snap.ID,
		Name:            snap.Name,
		CreatedAt:       snap.CreatedAt.Format(time.RFC3339),
		S3Key:           key,
		CampaignCount:   len(snap.Campaigns),
		FlowCount:       len(snap.Flows),
		SubscriberCount: len(snap.Subscribers),
	})
	if err != nil {
		return fmt.Errorf("marshal index item: %w", err)
	}

	_, err = a.dynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(a.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("write index item: %w", err)
	}
	return nil
}

// GetSnapshot downloads a snapshot payload from S3.
func (a *AWSStorage) GetSnapshot(ctx context.Context, id string) ([]byte, error) {
	out, err := a.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(s3Key(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("get snapshot from S3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}
	return data, nil
}

// ListSnapshots queries the DynamoDB index, returning listing metadata.
func (a *AWSStorage) ListSnapshots(ctx context.Context) ([]Meta, error) {
	out, err := a.dynamoDB.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(a.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "SNAPSHOT"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query snapshot index: %w", err)
	}

	metas := make([]Meta, 0, len(out.Items))
	for _, raw := range out.Items {
		var item snapshotItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		created, _ := time.Parse(time.RFC3339, item.CreatedAt)
		metas = append(metas, Meta{
			ID:              item.SK,
			Name:            item.Name,
			CreatedAt:       created,
			CampaignCount:   item.CampaignCount,
			FlowCount:       item.FlowCount,
			SubscriberCount: item.SubscriberCount,
		})
	}
	return metas, nil
}

func s3Key(id string) string {
	return "snapshots/" + id + ".json"
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/zpam/classifier/pkg/dataset"
)

// RedisStore keeps datasets and runs in Redis
//
// Layout under KeyPrefix:
//
//	{prefix}:datasets               set of dataset names
//	{prefix}:dataset:{name}         hash: header (json), rows, features, saved_at
//	{prefix}:dataset:{name}:rows    list of json rows, label last
//	{prefix}:runs:{name}            sorted set of json runs scored by creation time
type RedisStore struct {
	client *redis.Client
	config *RedisConfig
}

// RedisConfig holds Redis connection and retention settings
type RedisConfig struct {
	RedisURL    string `json:"redis_url" yaml:"redis_url"`
	KeyPrefix   string `json:"key_prefix" yaml:"key_prefix"`
	DatabaseNum int    `json:"database_num" yaml:"database_num"`

	// Expiry of dataset keys; 0 keeps them forever
	DatasetTTL time.Duration `json:"dataset_ttl" yaml:"dataset_ttl"`
	// Runs kept per dataset; older runs are trimmed
	MaxRuns int `json:"max_runs" yaml:"max_runs"`

	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// DefaultRedisConfig returns default Redis configuration
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		RedisURL:    "redis://localhost:6379",
		KeyPrefix:   "classifier",
		DatabaseNum: 0,
		DatasetTTL:  0,
		MaxRuns:     100,
		BatchSize:   500,
	}
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %v", err)
	}
	opt.DB = config.DatabaseNum
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis connection failed: %v", err)
	}

	return &RedisStore{client: client, config: config}, nil
}

func (rs *RedisStore) SaveDataset(ctx context.Context, ds *dataset.Dataset) error {
	if err := validateDataset(ds); err != nil {
		return err
	}

	header, err := json.Marshal(ds.Header)
	if err != nil {
		return errors.Wrap(err, "failed to encode header")
	}

	metaKey := rs.datasetKey(ds.Name)
	rowsKey := rs.rowsKey(ds.Name)

	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, rowsKey)

	batch := make([]interface{}, 0, rs.batchSize())
	for i, row := range ds.Inputs {
		record := append(append(make([]string, 0, len(row)+1), row...), ds.Outputs[i])
		encoded, err := json.Marshal(record)
		if err != nil {
			return errors.Wrapf(err, "failed to encode row %d", i)
		}
		batch = append(batch, encoded)
		if len(batch) >= rs.batchSize() {
			pipe.RPush(ctx, rowsKey, batch...)
			batch = make([]interface{}, 0, rs.batchSize())
		}
	}
	if len(batch) > 0 {
		pipe.RPush(ctx, rowsKey, batch...)
	}

	pipe.HSet(ctx, metaKey,
		"header", string(header),
		"rows", ds.Rows(),
		"features", ds.Features(),
		"saved_at", time.Now().Unix(),
	)
	pipe.SAdd(ctx, rs.indexKey(), ds.Name)

	if rs.config.DatasetTTL > 0 {
		pipe.Expire(ctx, metaKey, rs.config.DatasetTTL)
		pipe.Expire(ctx, rowsKey, rs.config.DatasetTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to save dataset %s", ds.Name)
	}
	return nil
}

func (rs *RedisStore) LoadDataset(ctx context.Context, name string) (*dataset.Dataset, error) {
	meta, err := rs.client.HGetAll(ctx, rs.datasetKey(name)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load dataset %s", name)
	}
	if len(meta) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "dataset %s", name)
	}

	ds := &dataset.Dataset{Name: name}
	if h := meta["header"]; h != "" {
		if err := json.Unmarshal([]byte(h), &ds.Header); err != nil {
			return nil, errors.Wrap(err, "corrupt dataset header")
		}
	}

	rows, err := rs.client.LRange(ctx, rs.rowsKey(name), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load rows of %s", name)
	}

	for i, encoded := range rows {
		var record []string
		if err := json.Unmarshal([]byte(encoded), &record); err != nil {
			return nil, errors.Wrapf(err, "corrupt row %d", i)
		}
		if len(record) == 0 {
			return nil, errors.Errorf("corrupt row %d: empty record", i)
		}
		ds.Inputs = append(ds.Inputs, record[:len(record)-1])
		ds.Outputs = append(ds.Outputs, record[len(record)-1])
	}

	if expected, _ := strconv.Atoi(meta["rows"]); expected != ds.Rows() {
		return nil, errors.Errorf("dataset %s has %d rows, expected %d", name, ds.Rows(), expected)
	}
	return ds, nil
}

func (rs *RedisStore) ListDatasets(ctx context.Context) ([]string, error) {
	names, err := rs.client.SMembers(ctx, rs.indexKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list datasets")
	}

	// Drop names whose keys have expired
	var live []string
	for _, name := range names {
		n, err := rs.client.Exists(ctx, rs.datasetKey(name)).Result()
		if err != nil {
			return nil, errors.Wrap(err, "failed to list datasets")
		}
		if n > 0 {
			live = append(live, name)
		}
	}
	sort.Strings(live)
	return live, nil
}

func (rs *RedisStore) DeleteDataset(ctx context.Context, name string) error {
	pipe := rs.client.TxPipeline()
	del := pipe.Del(ctx, rs.datasetKey(name), rs.rowsKey(name), rs.runsKey(name))
	pipe.SRem(ctx, rs.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to delete dataset %s", name)
	}
	if del.Val() == 0 {
		return errors.Wrapf(ErrNotFound, "dataset %s", name)
	}
	return nil
}

func (rs *RedisStore) RecordRun(ctx context.Context, run *Run) error {
	if run == nil || run.Dataset == "" {
		return errors.New("run needs a dataset name")
	}

	r := *run
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.ID == "" {
		r.ID = newRunID(&r)
	}

	encoded, err := json.Marshal(&r)
	if err != nil {
		return errors.Wrap(err, "failed to encode run")
	}

	key := rs.runsKey(r.Dataset)
	pipe := rs.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(r.CreatedAt.UnixNano()), Member: encoded})
	if rs.config.MaxRuns > 0 {
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-rs.config.MaxRuns-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to record run")
	}
	return nil
}

func (rs *RedisStore) Runs(ctx context.Context, datasetName string, limit int) ([]*Run, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	members, err := rs.client.ZRevRange(ctx, rs.runsKey(datasetName), 0, stop).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load runs")
	}

	runs := make([]*Run, 0, len(members))
	for _, member := range members {
		var run Run
		if err := json.Unmarshal([]byte(member), &run); err != nil {
			return nil, errors.Wrap(err, "corrupt run")
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// Reset removes every key under the configured prefix
func (rs *RedisStore) Reset(ctx context.Context) error {
	iter := rs.client.Scan(ctx, 0, rs.config.KeyPrefix+":*", int64(rs.batchSize())).Iterator()

	pipe := rs.client.Pipeline()
	count := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++

		if count >= rs.batchSize() {
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
			pipe = rs.client.Pipeline()
			count = 0
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if count > 0 {
		_, err := pipe.Exec(ctx)
		return err
	}
	return nil
}

func (rs *RedisStore) indexKey() string {
	return fmt.Sprintf("%s:datasets", rs.config.KeyPrefix)
}

func (rs *RedisStore) datasetKey(name string) string {
	return fmt.Sprintf("%s:dataset:%s", rs.config.KeyPrefix, name)
}

func (rs *RedisStore) rowsKey(name string) string {
	return rs.datasetKey(name) + ":rows"
}

func (rs *RedisStore) runsKey(name string) string {
	return fmt.Sprintf("%s:runs:%s", rs.config.KeyPrefix, name)
}

func (rs *RedisStore) batchSize() int {
	if rs.config.BatchSize > 0 {
		return rs.config.BatchSize
	}
	return 500
}

var _ Store = (*RedisStore)(nil)

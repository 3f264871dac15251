package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("docsearchd.vectorstore.qdrant")

// collectionNamePattern validates collection names.
// Pattern: lowercase letters, numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// QdrantConfig holds configuration for the Qdrant gRPC client.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	// Default: "localhost"
	Host string `koanf:"host"`

	// Port is the Qdrant gRPC port (NOT the HTTP REST port).
	// Default: 6334
	Port int `koanf:"port"`

	// CollectionName is the collection holding document chunks.
	CollectionName string `koanf:"collection_name"`

	// VectorSize is the dense embedding dimensionality. MUST match
	// the embedding provider's output.
	VectorSize uint64 `koanf:"vector_size"`

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool `koanf:"use_tls"`

	// MaxRetries is the maximum number of retry attempts for
	// transient failures. Default: 3
	MaxRetries int `koanf:"max_retries"`

	// RetryBackoff is the initial backoff duration for retries.
	// Doubles on each retry. Default: 1 second
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// MaxMessageSize is the maximum gRPC message size in bytes.
	// Default: 50MB, to handle large ingestion batches.
	MaxMessageSize int `koanf:"max_message_size"`

	// CircuitBreakerThreshold is the number of failures before the
	// circuit opens. Default: 5
	CircuitBreakerThreshold int `koanf:"circuit_breaker_threshold"`
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("%w: collection name required", ErrInvalidConfig)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
	if c.CircuitBreakerThreshold == 0 {
		c.CircuitBreakerThreshold = 5
	}
}

// ValidateCollectionName validates a collection name against security
// rules. Rejects uppercase, special characters, path traversal, spaces.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match pattern ^[a-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// IsTransientError checks if an error is transient (should retry).
// Returns true for network timeouts and temporary unavailability.
// Returns false for invalid arguments, not found, permission denied.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	st, ok := status.FromError(err)
	if !ok {
		return false
	}

	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// QdrantStore is a Store implementation over Qdrant's native gRPC
// client.
//
// Every point carries two named vector spaces, "dense" under cosine
// distance and "sparse" with the IDF modifier, so one collection serves
// both halves of hybrid retrieval. Tenant isolation is payload-based:
// org_id is written into every point and required in every filter.
type QdrantStore struct {
	client *qdrant.Client
	config QdrantConfig
	logger *logging.Logger

	// ensured caches collection existence to avoid repeated checks.
	ensured sync.Map

	circuitBreaker struct {
		failures int
		lastFail time.Time
		mu       sync.Mutex
	}
}

// NewQdrantStore creates a QdrantStore and verifies connectivity.
func NewQdrantStore(config QdrantConfig, logger *logging.Logger) (*QdrantStore, error) {
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := ValidateCollectionName(config.CollectionName); err != nil {
		return nil, fmt.Errorf("validating collection name: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if !config.UseTLS {
		logger.Warn(context.Background(), "qdrant gRPC using plaintext, insecure for production")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &QdrantStore{
		client: client,
		config: config,
		logger: logger.Named("vectorstore"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.healthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("health check failed: %w", err)
	}

	return store, nil
}

// Close closes the Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *QdrantStore) healthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.HealthCheck")
	defer span.End()

	_, err := s.client.HealthCheck(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("health check failed: %w", err)
	}

	span.SetStatus(codes.Ok, "healthy")
	return nil
}

// retryOperation retries an operation with exponential backoff.
// Transient exhaustion and an open circuit surface ErrIndexUnavailable
// so callers can degrade instead of failing hard.
func (s *QdrantStore) retryOperation(ctx context.Context, operationName string, operation func() error) error {
	backoff := s.config.RetryBackoff

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			s.resetCircuitBreaker()
			return nil
		}

		if s.isCircuitOpen() {
			return fmt.Errorf("%s: circuit breaker open: %w", operationName, ErrIndexUnavailable)
		}

		if !IsTransientError(err) {
			return fmt.Errorf("%s failed (permanent): %w", operationName, err)
		}

		s.recordFailure()

		if attempt == s.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", operationName, s.config.MaxRetries, errors.Join(ErrIndexUnavailable, err))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operationName, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return nil
}

func (s *QdrantStore) recordFailure() {
	s.circuitBreaker.mu.Lock()
	defer s.circuitBreaker.mu.Unlock()
	s.circuitBreaker.failures++
	s.circuitBreaker.lastFail = time.Now()
}

func (s *QdrantStore) resetCircuitBreaker() {
	s.circuitBreaker.mu.Lock()
	defer s.circuitBreaker.mu.Unlock()
	s.circuitBreaker.failures = 0
}

func (s *QdrantStore) isCircuitOpen() bool {
	s.circuitBreaker.mu.Lock()
	defer s.circuitBreaker.mu.Unlock()

	if s.circuitBreaker.failures >= s.config.CircuitBreakerThreshold {
		// Allow retry after 30 seconds.
		if time.Since(s.circuitBreaker.lastFail) > 30*time.Second {
			s.circuitBreaker.failures = 0
			return false
		}
		return true
	}
	return false
}

// EnsureCollection creates the hybrid collection if missing and checks
// the dense dimension if it already exists.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.EnsureCollection")
	defer span.End()

	name := s.config.CollectionName
	span.SetAttributes(attribute.String("collection", name))

	if _, ok := s.ensured.Load(name); ok {
		return nil
	}

	var info *qdrant.CollectionInfo
	err := s.retryOperation(ctx, "get_collection_info", func() error {
		res, err := s.client.GetCollectionInfo(ctx, name)
		if err != nil {
			st, ok := status.FromError(err)
			if ok && st.Code() == grpccodes.NotFound {
				return nil
			}
			return err
		}
		info = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("checking collection %s: %w", name, err)
	}

	if info != nil {
		if err := s.verifySchema(info); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		s.ensured.Store(name, true)
		span.SetStatus(codes.Ok, "exists")
		return nil
	}

	err = s.retryOperation(ctx, "create_collection", func() error {
		createErr := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
				vectorNameDense: {
					Size:     s.config.VectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			}),
			SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
				vectorNameSparse: {
					Modifier: qdrant.Modifier_Idf.Enum(),
				},
			}),
		})
		if createErr != nil {
			// Lost a create race with another instance.
			st, ok := status.FromError(createErr)
			if ok && st.Code() == grpccodes.AlreadyExists {
				return nil
			}
		}
		return createErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", name, err)
	}

	s.createPayloadIndexes(ctx, name)

	s.logger.Info(ctx, "created hybrid collection",
		zap.String("collection", name),
		zap.Uint64("vector_size", s.config.VectorSize),
	)

	s.ensured.Store(name, true)
	span.SetStatus(codes.Ok, "created")
	return nil
}

// verifySchema checks that an existing collection carries the expected
// named vector spaces with the configured dense dimension.
func (s *QdrantStore) verifySchema(info *qdrant.CollectionInfo) error {
	params := info.GetConfig().GetParams()
	dense := params.GetVectorsConfig().GetParamsMap().GetMap()[vectorNameDense]
	if dense == nil {
		return fmt.Errorf("%w: collection %s has no %q vector space", ErrSchema, s.config.CollectionName, vectorNameDense)
	}
	if dense.GetSize() != s.config.VectorSize {
		return fmt.Errorf("%w: collection %s dense size %d does not match configured %d",
			ErrSchema, s.config.CollectionName, dense.GetSize(), s.config.VectorSize)
	}
	if params.GetSparseVectorsConfig().GetMap()[vectorNameSparse] == nil {
		return fmt.Errorf("%w: collection %s has no %q vector space", ErrSchema, s.config.CollectionName, vectorNameSparse)
	}
	return nil
}

// createPayloadIndexes indexes the fields every query filters on.
// Index creation failures are logged, not fatal: filtering still works
// without the index, only slower.
func (s *QdrantStore) createPayloadIndexes(ctx context.Context, collection string) {
	fields := []struct {
		name string
		typ  qdrant.FieldType
	}{
		{fieldOrgID, qdrant.FieldType_FieldTypeInteger},
		{fieldFileID, qdrant.FieldType_FieldTypeKeyword},
		{fieldStatus, qdrant.FieldType_FieldTypeKeyword},
		{fieldContentType, qdrant.FieldType_FieldTypeKeyword},
	}
	for _, f := range fields {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collection,
			FieldName:      f.name,
			FieldType:      &f.typ,
		})
		if err != nil {
			s.logger.Warn(ctx, "creating payload index failed",
				zap.String("field", f.name),
				zap.Error(err),
			)
		}
	}
}

// Upsert writes points into the collection. Point ids are deterministic
// so re-ingestion overwrites prior versions.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) (int, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Upsert")
	defer span.End()

	span.SetAttributes(
		attribute.Int("point_count", len(points)),
		attribute.String("collection", s.config.CollectionName),
	)

	if len(points) == 0 {
		return 0, nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		if err := p.Validate(); err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("point %d: %w", i, err)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(p.ID.String()),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				vectorNameDense:  qdrant.NewVectorDense(p.Dense),
				vectorNameSparse: qdrant.NewVectorSparse(p.Sparse.Indices, p.Sparse.Values),
			}),
			Payload: chunkPayload(p.Chunk),
		}
	}

	err := s.retryOperation(ctx, "upsert", func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.config.CollectionName,
			Points:         qdrantPoints,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("upserting %d points: %w", len(points), err)
	}

	span.SetStatus(codes.Ok, "success")
	return len(points), nil
}

// DeleteByFile removes every point of one document of one tenant.
func (s *QdrantStore) DeleteByFile(ctx context.Context, fileID string, orgID int64) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.DeleteByFile")
	defer span.End()

	span.SetAttributes(
		attribute.String("file_id", fileID),
		attribute.Int64("org_id", orgID),
	)

	if fileID == "" {
		return fmt.Errorf("%w: file id required", ErrInvalidConfig)
	}
	if orgID <= 0 {
		return fmt.Errorf("%w: org id must be positive", ErrInvalidTenant)
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			matchIntCondition(fieldOrgID, orgID),
			matchKeywordCondition(fieldFileID, fileID),
		},
	}

	err := s.retryOperation(ctx, "delete_by_file", func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: s.config.CollectionName,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: filter},
			},
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting points for file %s: %w", fileID, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// GetByFile returns up to limit active chunks of one document.
func (s *QdrantStore) GetByFile(ctx context.Context, fileID string, orgID int64, limit int) ([]chunker.Chunk, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.GetByFile")
	defer span.End()

	span.SetAttributes(
		attribute.String("file_id", fileID),
		attribute.Int64("org_id", orgID),
		attribute.Int("limit", limit),
	)

	if fileID == "" {
		return nil, fmt.Errorf("%w: file id required", ErrInvalidConfig)
	}
	if orgID <= 0 {
		return nil, fmt.Errorf("%w: org id must be positive", ErrInvalidTenant)
	}
	if limit <= 0 {
		limit = 100
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			matchIntCondition(fieldOrgID, orgID),
			matchKeywordCondition(fieldFileID, fileID),
			matchKeywordCondition(fieldStatus, string(chunker.StatusActive)),
		},
	}

	var retrieved []*qdrant.RetrievedPoint
	err := s.retryOperation(ctx, "get_by_file", func() error {
		res, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.config.CollectionName,
			Filter:         filter,
			Limit:          qdrant.PtrOf(uint32(limit)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		retrieved = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("scrolling points for file %s: %w", fileID, err)
	}

	chunks := make([]chunker.Chunk, len(retrieved))
	for i, point := range retrieved {
		chunks[i] = chunkFromPayload(point.Payload)
	}
	// Scroll yields point-id order, and ids are content hashes.
	sortByPosition(chunks)

	span.SetAttributes(attribute.Int("chunk_count", len(chunks)))
	span.SetStatus(codes.Ok, "success")
	return chunks, nil
}

// QueryDense searches the dense vector space.
func (s *QdrantStore) QueryDense(ctx context.Context, vector []float32, params QueryParams) ([]Candidate, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.QueryDense")
	defer span.End()

	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: dense query vector required", ErrInvalidConfig)
	}
	return s.query(ctx, span, "query_dense", qdrant.NewQueryDense(vector), vectorNameDense, params)
}

// QuerySparse searches the sparse vector space. An empty sparse vector
// yields no candidates without touching the index.
func (s *QdrantStore) QuerySparse(ctx context.Context, vector embeddings.SparseVector, params QueryParams) ([]Candidate, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.QuerySparse")
	defer span.End()

	if vector.IsZero() {
		return nil, nil
	}
	return s.query(ctx, span, "query_sparse", qdrant.NewQuerySparse(vector.Indices, vector.Values), vectorNameSparse, params)
}

func (s *QdrantStore) query(ctx context.Context, span trace.Span, operationName string, query *qdrant.Query, using string, params QueryParams) ([]Candidate, error) {
	if err := params.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("collection", s.config.CollectionName),
		attribute.String("vector_space", using),
		attribute.Int64("org_id", params.OrgID),
		attribute.Int("limit", params.Limit),
	)

	filter := tenantFilter(params)

	var results []*qdrant.ScoredPoint
	err := s.retryOperation(ctx, operationName, func() error {
		res, err := s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: s.config.CollectionName,
			Query:          query,
			Using:          qdrant.PtrOf(using),
			Limit:          qdrant.PtrOf(uint64(params.Limit)),
			Filter:         filter,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		results = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying %s space: %w", using, err)
	}

	candidates := make([]Candidate, len(results))
	for i, point := range results {
		candidates[i] = Candidate{
			Chunk: chunkFromPayload(point.Payload),
			Score: point.Score,
		}
	}

	span.SetAttributes(attribute.Int("candidate_count", len(candidates)))
	span.SetStatus(codes.Ok, "success")
	return candidates, nil
}

// tenantFilter builds the mandatory query filter. org_id and active
// status are always present; file and content type scoping are
// optional.
func tenantFilter(params QueryParams) *qdrant.Filter {
	must := []*qdrant.Condition{
		matchIntCondition(fieldOrgID, params.OrgID),
		matchKeywordCondition(fieldStatus, string(chunker.StatusActive)),
	}
	if params.FileID != "" {
		must = append(must, matchKeywordCondition(fieldFileID, params.FileID))
	}
	if params.ContentType != "" {
		must = append(must, matchKeywordCondition(fieldContentType, params.ContentType))
	}
	return &qdrant.Filter{Must: must}
}

func matchKeywordCondition(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func matchIntCondition(key string, value int64) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Integer{Integer: value},
				},
			},
		},
	}
}

// Ensure QdrantStore implements Store.
var _ Store = (*QdrantStore)(nil)

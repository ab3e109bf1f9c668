package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/pipeline"
	"github.com/joseph-ayodele/bol-intake/internal/recordstore"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
	"github.com/joseph-ayodele/bol-intake/internal/source"
)

const sampleBOL = `STRAIGHT BILL OF LADING
Order #: 901234
Carrier's No. MC#778899
ORIGIN: DESTINATION: Pacific Office Automation 1234 North 500 North, Suite B, West Valley City UT 84119 Acme Medical Group 55 East 100 South, Salt Lake City UT 84111
Asset Serial Number Description
Konica Minolta bizhub C368 ACV70119LLE7 Qty 1 350 lbs
TTR Contact: Jane Smith 801-555-0142 jane.smith@example.com
Load: 3/10 Deliver: 3/12-3/14
`

type fakeStore struct {
	fields map[string]string
	err    error
}

func (f *fakeStore) CreateJob(_ context.Context, fields map[string]string) (*recordstore.CreateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.fields = fields
	return &recordstore.CreateResult{RecordID: "5512", ModID: "0", JobNumber: "88231", ConfirmationAvailable: true}, nil
}

func (f *fakeStore) FindByOrderNumber(_ context.Context, order string) ([]recordstore.Record, error) {
	if order != "901234" {
		return []recordstore.Record{}, nil
	}
	return []recordstore.Record{{RecordID: "5512", ModID: "1", FieldData: map[string]any{"client_order_number": "901234"}}}, nil
}

type env struct {
	client *IntakeClient
	conn   *grpc.ClientConn
	store  *fakeStore
	db     *repository.DB
	runs   repository.ExtractRunRepository
	subs   repository.SubmissionRepository
	mapper *mapping.Mapper
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{DSN: "sqlite://:memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	runs := repository.NewExtractRunRepository(db, nil)
	subs := repository.NewSubmissionRepository(db, nil)

	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	mapper := mapping.NewMapper(mapping.DefaultsFromConfig(common.DefaultsConfig{
		PeopleRequired: 2,
		LocationLoad:   "PEP",
		ClientCode:     constants.ClientCodeTTRUtah,
		MarketID:       "Utah",
	}), nil)
	proc := pipeline.NewProcessor(nil,
		pipeline.NewTextStage(source.NewOpener(10, nil, nil), ocr.NewExtractor(ocr.Config{EnableOCR: true}, nil), nil),
		pipeline.NewFieldStage(extract.NewExtractor(extract.WithClock(clock)), mapper, nil),
		runs,
	)

	store := &fakeStore{}
	gs, _ := NewGRPCServer(NewIntakeService(proc, store, subs, nil), nil)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &env{client: NewIntakeClient(conn), conn: conn, store: store, db: db, runs: runs, subs: subs, mapper: mapper}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func validFields() map[string]any {
	return map[string]any{
		mapping.FieldJobStatus:         "Entered",
		mapping.FieldJobType:           "Delivery",
		mapping.FieldClientCodeID:      "TTR-u",
		mapping.FieldClientID:          "1247",
		mapping.FieldClientClassID:     "110.1",
		mapping.FieldDisposition:       "Standard",
		mapping.FieldNotificationID:    "Yes",
		mapping.FieldMarketID:          "Utah",
		mapping.FieldClientOrderNumber: "901234",
		mapping.FieldCustomer:          "Pacific Office Automation",
		mapping.FieldAddress:           "1234 North 500 North",
		mapping.FieldZip:               "84119",
		mapping.FieldStateID:           "ut",
		mapping.FieldPhone:             "(801) 555-0142",
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	resp, err := healthpb.NewHealthClient(e.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestExtract(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(t.TempDir(), "bol.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleBOL), 0o600))

	resp, err := e.client.Extract(context.Background(), mustStruct(t, map[string]any{"source": path, "mode": "auto"}))
	require.NoError(t, err)

	out := resp.AsMap()
	assert.Equal(t, "text", out["method"])
	assert.NotEmpty(t, out["run_id"])
	raw := out["raw"].(map[string]any)
	assert.Equal(t, "901234", raw["orderNumber"])

	jobs := out["jobs"].([]any)
	require.Len(t, jobs, 1)
	job := jobs[0].(map[string]any)
	assert.Equal(t, true, job["valid"])
	assert.Equal(t, "ACV70119LLE7", job["fields"].(map[string]any)[mapping.FieldSerialNumber])
}

func TestExtractErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.Extract(ctx, mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "source is required")

	_, err = e.client.Extract(ctx, mustStruct(t, map[string]any{"source": "x.pdf", "mode": "magic"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\x00b"), 0o600))
	_, err = e.client.Extract(ctx, mustStruct(t, map[string]any{"source": path}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestValidate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.client.Validate(ctx, mustStruct(t, map[string]any{"fields": validFields()}))
	require.NoError(t, err)
	out := resp.AsMap()
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, "801-555-0142", out["normalized"].(map[string]any)[mapping.FieldPhone])
	assert.Equal(t, "UT", out["normalized"].(map[string]any)[mapping.FieldStateID])

	bad := validFields()
	bad[mapping.FieldZip] = "8411"
	bad[mapping.FieldCustomer] = ""
	resp, err = e.client.Validate(ctx, mustStruct(t, map[string]any{"fields": bad}))
	require.NoError(t, err)
	out = resp.AsMap()
	assert.Equal(t, false, out["valid"])
	assert.Len(t, out["violations"].([]any), 2)
	assert.NotEmpty(t, out["schema_error"])

	_, err = e.client.Validate(ctx, mustStruct(t, map[string]any{"fields": map[string]any{"bogus": "x"}}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.Validate(ctx, mustStruct(t, map[string]any{"fields": map[string]any{mapping.FieldZip: 84119.0}}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSubmit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.client.Submit(ctx, mustStruct(t, map[string]any{"fields": validFields()}))
	require.NoError(t, err)
	out := resp.AsMap()
	assert.Equal(t, string(constants.ReviewSubmitted), out["state"])
	assert.Equal(t, "88231", out["job_number"])
	assert.Equal(t, true, out["confirmation_available"])
	assert.Equal(t, "801-555-0142", e.store.fields[mapping.FieldPhone])

	subs, err := e.subs.ListByOrder(ctx, "901234")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "88231", subs[0].JobNumber)
}

func TestSubmitErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	bad := validFields()
	bad[mapping.FieldZip] = ""
	_, err := e.client.Submit(ctx, mustStruct(t, map[string]any{"fields": bad}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Nil(t, e.store.fields)

	_, err = e.client.Submit(ctx, mustStruct(t, map[string]any{"fields": validFields(), "run_id": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	e.store.err = recordstore.ErrAuthentication
	_, err = e.client.Submit(ctx, mustStruct(t, map[string]any{"fields": validFields()}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	e.store.err = &recordstore.APIError{Op: "Job creation", Status: 500, Code: "102", Message: "Field is missing"}
	_, err = e.client.Submit(ctx, mustStruct(t, map[string]any{"fields": validFields()}))
	assert.Equal(t, codes.Aborted, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "500 - Code 102: Field is missing")
}

func TestFindJobs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.client.FindJobs(ctx, mustStruct(t, map[string]any{"order_number": "901234"}))
	require.NoError(t, err)
	recs := resp.AsMap()["records"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "5512", recs[0].(map[string]any)["recordId"])

	resp, err = e.client.FindJobs(ctx, mustStruct(t, map[string]any{"order_number": "000"}))
	require.NoError(t, err)
	assert.Empty(t, resp.AsMap()["records"])

	_, err = e.client.FindJobs(ctx, mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.FindJobs(ctx, mustStruct(t, map[string]any{"order_number": strings.Repeat("9", 65)}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "order_number must be at most 64 characters")
}

func TestSubmitWithoutStore(t *testing.T) {
	svc := NewIntakeService(nil, nil, nil, nil)
	_, err := svc.Submit(context.Background(), mustStruct(t, map[string]any{"fields": validFields()}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/metrics"
)

func demoSource() CandidateSource {
	return staticSource(
		PersonRecord{ID: "pac001", Name: "José da Silva", MotherName: "Maria da Silva", MotherNationalID: "111.222.333-44", NationalID: "123.456.789-00"},
		PersonRecord{ID: "pac002", Name: "Maria Santos", MotherName: "Ana Santos", MotherNationalID: "222.333.444-55", NationalID: "987.654.321-00"},
	)
}

func newTestService(t *testing.T, source CandidateSource, cfg ServiceConfig) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(source, cfg, zerolog.Nop(), m, WithClock(func() time.Time { return fixedNow }))
	return svc, m
}

func TestService_ValidateRequest_Duplicate(t *testing.T) {
	svc, m := newTestService(t, demoSource(), ServiceConfig{Policy: DefaultPolicy()})

	result, err := svc.ValidateRequest(context.Background(), &RegistrationRequest{
		Name:             "Jose da Silva",
		MotherName:       "Maria da Silva",
		MotherNationalID: "111.222.333-44",
		BirthDate:        "1985-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, VerdictDuplicate, result.Verdict)
	assert.Equal(t, "pac001", result.MatchedID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupOutcome.WithLabelValues("DUPLICATE")))
}

func TestService_ValidateRequest_SkipsNewbornByConfiguredPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.ValidateNewborns = false
	svc, m := newTestService(t, demoSource(), ServiceConfig{Policy: policy})

	result, err := svc.ValidateRequest(context.Background(), &RegistrationRequest{
		Name:             "José da Silva",
		MotherName:       "Maria da Silva",
		MotherNationalID: "111.222.333-44",
		BirthDate:        "2026-08-17",
	})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, SkipNewborn, result.SkipReason)
	assert.Equal(t, VerdictUnique, result.Verdict)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupOutcome.WithLabelValues("SKIPPED")))
}

func TestService_ValidateRequest_RequestFlagsOverridePolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.ValidateNewborns = false
	svc, _ := newTestService(t, demoSource(), ServiceConfig{Policy: policy})

	result, err := svc.ValidateRequest(context.Background(), &RegistrationRequest{
		Name:             "José da Silva",
		MotherName:       "Maria da Silva",
		MotherNationalID: "111.222.333-44",
		BirthDate:        "2026-08-17",
		Policy:           &PolicyOverride{ValidateNewborns: boolP(true)},
	})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.True(t, result.IsDuplicate)
}

func TestService_ValidateRequest_InputErrorCounted(t *testing.T) {
	svc, m := newTestService(t, demoSource(), ServiceConfig{Policy: DefaultPolicy()})

	_, err := svc.ValidateRequest(context.Background(), &RegistrationRequest{})
	assert.ErrorIs(t, err, ErrInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupOutcome.WithLabelValues("ERROR")))
}

func TestService_Validate_Timeout(t *testing.T) {
	slow := CandidateSourceFunc(func(ctx context.Context) ([]PersonRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc, _ := newTestService(t, slow, ServiceConfig{Policy: DefaultPolicy(), Timeout: 10 * time.Millisecond})

	_, err := svc.Validate(context.Background(), PersonRecord{Name: "Ana"}, DefaultPolicy())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_Threshold(t *testing.T) {
	svc, _ := newTestService(t, demoSource(), ServiceConfig{Policy: DefaultPolicy(), Threshold: 0.95})
	assert.Equal(t, 0.95, svc.matcher.Threshold())

	svc, _ = newTestService(t, demoSource(), ServiceConfig{Policy: DefaultPolicy()})
	assert.Equal(t, 0.8, svc.matcher.Threshold())
}

func TestService_NilMetrics(t *testing.T) {
	svc := NewService(demoSource(), ServiceConfig{Policy: DefaultPolicy()}, zerolog.Nop(), nil)
	_, err := svc.Validate(context.Background(), PersonRecord{Name: "Ana"}, DefaultPolicy())
	assert.NoError(t, err)
}

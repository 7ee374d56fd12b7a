package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// mockSSMClient returns values for known names and records batch sizes.
type mockSSMClient struct {
	values     map[string]string
	err        error
	batchSizes []int
}

func (m *mockSSMClient) GetParameters(_ context.Context, params *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	m.batchSizes = append(m.batchSizes, len(params.Names))
	if m.err != nil {
		return nil, m.err
	}
	output := &ssm.GetParametersOutput{}
	for _, name := range params.Names {
		if v, ok := m.values[name]; ok {
			output.Parameters = append(output.Parameters, ssmtypes.Parameter{
				Name:  aws.String(name),
				Value: aws.String(v),
			})
		} else {
			output.InvalidParameters = append(output.InvalidParameters, name)
		}
	}
	return output, nil
}

func TestGetParametersBatchResolvesValues(t *testing.T) {
	client := &mockSSMClient{values: map[string]string{
		"/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN": "xoxb-secret",
	}}
	provider := newSSMProviderWithClient("ap-northeast-2", client)

	result, err := provider.GetParametersBatch(context.Background(),
		[]string{"/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN"})
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}
	if result["/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN"] != "xoxb-secret" {
		t.Errorf("resolved value = %q", result["/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN"])
	}
}

func TestGetParametersBatchSplitsAtServiceLimit(t *testing.T) {
	values := make(map[string]string)
	var keys []string
	for i := 0; i < 23; i++ {
		key := fmt.Sprintf("/DEV/SNS/MUSEIFY/PARAM_%d", i)
		values[key] = "v"
		keys = append(keys, key)
	}
	client := &mockSSMClient{values: values}
	provider := newSSMProviderWithClient("ap-northeast-2", client)

	result, err := provider.GetParametersBatch(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}
	if len(result) != 23 {
		t.Errorf("resolved %d parameters, want 23", len(result))
	}
	want := []int{10, 10, 3}
	if len(client.batchSizes) != len(want) {
		t.Fatalf("batch sizes = %v, want %v", client.batchSizes, want)
	}
	for i, size := range want {
		if client.batchSizes[i] != size {
			t.Errorf("batch %d size = %d, want %d", i, client.batchSizes[i], size)
		}
	}
}

func TestGetParametersBatchOmitsInvalidParameters(t *testing.T) {
	client := &mockSSMClient{values: map[string]string{}}
	provider := newSSMProviderWithClient("ap-northeast-2", client)

	result, err := provider.GetParametersBatch(context.Background(),
		[]string{"/DEV/SNS/MUSEIFY/MISSING"})
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("result = %v, want empty for invalid parameters", result)
	}
}

func TestGetParametersBatchPropagatesAPIErrors(t *testing.T) {
	client := &mockSSMClient{err: errors.New("access denied")}
	provider := newSSMProviderWithClient("ap-northeast-2", client)

	if _, err := provider.GetParametersBatch(context.Background(), []string{"/x"}); err == nil {
		t.Fatal("expected error from failing client")
	}
}

func TestGetParametersBatchEmptyKeys(t *testing.T) {
	client := &mockSSMClient{}
	provider := newSSMProviderWithClient("ap-northeast-2", client)

	result, err := provider.GetParametersBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}
	if len(result) != 0 || len(client.batchSizes) != 0 {
		t.Error("empty key list must not call SSM")
	}
}

func TestGetParametersBatchCancelledContext(t *testing.T) {
	client := &mockSSMClient{values: map[string]string{"/x": "v"}}
	provider := newSSMProviderWithClient("ap-northeast-2", client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.GetParametersBatch(ctx, []string{"/x"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

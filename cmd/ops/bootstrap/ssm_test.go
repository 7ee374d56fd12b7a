package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// mockSSMClient simulates Parameter Store with an in-memory map.
type mockSSMClient struct {
	params   map[string]string
	getErr   error
	putErr   error
	putCalls []*ssm.PutParameterInput
}

func (m *mockSSMClient) GetParameter(_ context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	name := aws.ToString(params.Name)
	value, ok := m.params[name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
	}, nil
}

func (m *mockSSMClient) PutParameter(_ context.Context, params *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	m.putCalls = append(m.putCalls, params)
	if m.putErr != nil {
		return nil, m.putErr
	}
	if m.params == nil {
		m.params = make(map[string]string)
	}
	m.params[aws.ToString(params.Name)] = aws.ToString(params.Value)
	return &ssm.PutParameterOutput{}, nil
}

func testManager(client *mockSSMClient) *SSMManager {
	return NewSSMManagerWithClient(client, "dev", slog.New(slog.DiscardHandler))
}

func TestSSMPath(t *testing.T) {
	mgr := testManager(&mockSSMClient{})

	got := mgr.SSMPath("SLACK_BOT_TOKEN")
	want := "/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN"
	if got != want {
		t.Errorf("SSMPath() = %q, want %q", got, want)
	}
}

func TestParameterExists(t *testing.T) {
	client := &mockSSMClient{params: map[string]string{
		"/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN": "xoxb-1",
	}}
	mgr := testManager(client)
	ctx := context.Background()

	exists, err := mgr.ParameterExists(ctx, "/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN")
	if err != nil || !exists {
		t.Errorf("ParameterExists(existing) = %v, %v", exists, err)
	}

	exists, err = mgr.ParameterExists(ctx, "/DEV/SNS/MUSEIFY/MISSING")
	if err != nil || exists {
		t.Errorf("ParameterExists(missing) = %v, %v", exists, err)
	}
}

func TestParameterExistsUnexpectedError(t *testing.T) {
	client := &mockSSMClient{getErr: errors.New("access denied")}
	mgr := testManager(client)

	if _, err := mgr.ParameterExists(context.Background(), "/x"); err == nil {
		t.Fatal("expected error for non-NotFound failures")
	}
}

func TestPutSecretWritesSecureString(t *testing.T) {
	client := &mockSSMClient{}
	mgr := testManager(client)

	err := mgr.PutSecret(context.Background(), "/DEV/SNS/MUSEIFY/SLACK_BOT_TOKEN", "xoxb-2", false)
	if err != nil {
		t.Fatalf("PutSecret failed: %v", err)
	}

	if len(client.putCalls) != 1 {
		t.Fatalf("PutParameter called %d times", len(client.putCalls))
	}
	call := client.putCalls[0]
	if call.Type != ssmtypes.ParameterTypeSecureString {
		t.Errorf("Type = %v, want SecureString", call.Type)
	}
	if aws.ToBool(call.Overwrite) {
		t.Error("Overwrite = true, want false")
	}
}

func TestPutSecretRejectsEmptyValue(t *testing.T) {
	mgr := testManager(&mockSSMClient{})

	if err := mgr.PutSecret(context.Background(), "/x", "", false); err == nil {
		t.Fatal("expected error for empty value")
	}
	if err := mgr.PutSecret(context.Background(), "", "v", false); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutSecretAlreadyExists(t *testing.T) {
	client := &mockSSMClient{putErr: &ssmtypes.ParameterAlreadyExists{}}
	mgr := testManager(client)

	err := mgr.PutSecret(context.Background(), "/x", "v", false)
	var alreadyExists *ssmtypes.ParameterAlreadyExists
	if !errors.As(err, &alreadyExists) {
		t.Fatalf("error = %v, want wrapped ParameterAlreadyExists", err)
	}
}

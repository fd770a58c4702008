package llm

import "context"

// MockClient returns a canned answer so the service can run end-to-end with
// no inference endpoint configured.
type MockClient struct {
	Text string
	Err  error
}

func NewMockClient() *MockClient {
	return &MockClient{Text: "I can help you plan trips once an inference endpoint is configured. Based on the provided context, here is what I found."}
}

func (m *MockClient) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

package details

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
)

var pipelineRunGVR = schema.GroupVersionResource{
	Group:    "pipelines.kubeflow.org",
	Version:  "v1beta1",
	Resource: "pipelineruns",
}

// KubeflowClient reads pipeline run custom resources through the dynamic
// Kubernetes client.
type KubeflowClient struct {
	dyn       dynamic.Interface
	namespace string
}

// NewKubeflowClient builds a client from the in-cluster configuration.
// It fails when not running inside a cluster; callers treat that as
// "no Kubeflow available" rather than fatal.
func NewKubeflowClient(namespace string) (*KubeflowClient, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("load in-cluster config: %w", err)
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}
	return &KubeflowClient{dyn: dyn, namespace: namespace}, nil
}

// NewKubeflowClientWithInterface builds a client over an existing dynamic
// interface. Used by tests with a fake dynamic client.
func NewKubeflowClientWithInterface(dyn dynamic.Interface, namespace string) *KubeflowClient {
	return &KubeflowClient{dyn: dyn, namespace: namespace}
}

// GetPipelineRun returns the unstructured content of a pipeline run.
func (c *KubeflowClient) GetPipelineRun(ctx context.Context, name string) (map[string]any, error) {
	u, err := c.dyn.Resource(pipelineRunGVR).Namespace(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get pipeline run %q: %w", name, err)
	}
	return u.UnstructuredContent(), nil
}

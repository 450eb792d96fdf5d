package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-version"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Label that pins a benchmark pod to a node pool. Keep this in sync with the
// infrastructure code that labels the nodes.
const NodePoolLabel = "nodepoolname"

const containerName = "benchmark"

// KubeClient runs workload units as Kubernetes pods with restartPolicy Never, one
// per VM type, selected onto the matching node pool.
type KubeClient struct {
	clientset kubernetes.Interface
	namespace string
}

var _ Client = (*KubeClient)(nil)

func NewKubeClient(kubeconfig, namespace string) (*KubeClient, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	}
	restCfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	if namespace == "" {
		namespace = "default"
	}
	return &KubeClient{clientset: clientset, namespace: namespace}, nil
}

// CheckServer verifies that the credentials work and that the cluster runs at least
// minVersion. An empty minVersion only checks connectivity.
func (c *KubeClient) CheckServer(minVersion string) error {
	info, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("cannot reach the cluster: %w", err)
	}
	slog.Debug("connected to cluster", slog.String("serverVersion", info.GitVersion))

	if minVersion == "" {
		return nil
	}
	minimum, err := version.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum server version %s: %w", minVersion, err)
	}
	have, err := version.NewVersion(info.GitVersion)
	if err != nil {
		return fmt.Errorf("cannot parse server version %s: %w", info.GitVersion, err)
	}
	if have.LessThan(minimum) {
		return fmt.Errorf("cluster version %s is older than the required %s", info.GitVersion, minVersion)
	}
	return nil
}

func (c *KubeClient) CreateUnit(ctx context.Context, vmType, image string, nodeSelector map[string]string) (string, error) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:   UnitName(vmType),
			Labels: map[string]string{"app": "benchmark"},
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name:  containerName,
				Image: image,
			}},
			RestartPolicy: corev1.RestartPolicyNever,
			NodeSelector:  nodeSelector,
		},
	}

	created, err := c.clientset.CoreV1().Pods(c.namespace).Create(ctx, pod, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		slog.Info("replacing pod because it already exists", slog.String("pod", pod.Name))
		if err := c.deleteAndWait(ctx, pod.Name); err != nil {
			return "", err
		}
		created, err = c.clientset.CoreV1().Pods(c.namespace).Create(ctx, pod, metav1.CreateOptions{})
	}
	if err != nil {
		return "", fmt.Errorf("failed to create pod for VM type %s: %w", vmType, err)
	}
	return created.Name, nil
}

// The pod object lingers while its containers terminate, so creating again right
// after deleting can still conflict. Wait until the pod is actually gone.
func (c *KubeClient) deleteAndWait(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().Pods(c.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete pod %s: %w", name, err)
	}
	for i := 0; i < 30; i++ {
		_, err := c.clientset.CoreV1().Pods(c.namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("timed out waiting for pod %s to be deleted", name)
}

func (c *KubeClient) UnitStatus(ctx context.Context, unitID string) (UnitStatus, error) {
	pod, err := c.clientset.CoreV1().Pods(c.namespace).Get(ctx, unitID, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to read pod %s: %w", unitID, err)
	}
	switch pod.Status.Phase {
	case corev1.PodSucceeded:
		return UnitSucceeded, nil
	case corev1.PodFailed:
		return UnitFailed, nil
	case corev1.PodRunning:
		return UnitRunning, nil
	default:
		return UnitPending, nil
	}
}

func (c *KubeClient) UnitLog(ctx context.Context, unitID string) (string, error) {
	buf, err := c.clientset.CoreV1().Pods(c.namespace).GetLogs(unitID, &corev1.PodLogOptions{Container: containerName}).Do(ctx).Raw()
	if err != nil {
		return "", fmt.Errorf("failed to read pod %s log: %w", unitID, err)
	}
	return string(buf), nil
}

func (c *KubeClient) DeleteUnit(ctx context.Context, unitID string) error {
	err := c.clientset.CoreV1().Pods(c.namespace).Delete(ctx, unitID, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete pod %s: %w", unitID, err)
	}
	return nil
}

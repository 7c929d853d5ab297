package panels

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/logging"
	uiruntime "github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

func testPod(ns, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Namespace:         ns,
			Name:              name,
			CreationTimestamp: metav1.NewTime(time.Now().Add(-5 * time.Minute)),
			ManagedFields:     []metav1.ManagedFieldsEntry{{Manager: "kubectl"}},
		},
		Spec: corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}, {Name: "sidecar"}}},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "app", Ready: true, RestartCount: 2},
				{Name: "sidecar", RestartCount: 1},
			},
		},
	}
}

func testNode(name string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: map[string]string{roleLabelPrefix + "control-plane": ""},
		},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{{Type: corev1.NodeReady, Status: corev1.ConditionTrue}},
			NodeInfo:   corev1.NodeSystemInfo{KubeletVersion: "v1.30.3"},
		},
	}
}

func testClient(objects ...runtime.Object) *kube.Client {
	return kube.FromInterface(fake.NewSimpleClientset(objects...), nil)
}

func key(k terminal.Key) events.Event {
	return events.Keypress{KeyEvent: terminal.KeyEvent{Key: k}}
}

func runeKey(r rune) events.Event {
	return events.Keypress{KeyEvent: terminal.KeyEvent{Key: terminal.KeyRune, Rune: r}}
}

type screen struct {
	buf  *uiruntime.Buffer
	area uiruntime.Rect
}

func newScreen() *screen {
	buf := uiruntime.NewBuffer(120, 30)
	return &screen{buf: buf, area: buf.Area()}
}

func (s *screen) draw(t *testing.T, w widgets.Widget) string {
	t.Helper()
	s.buf.Clear()
	require.NoError(t, w.Draw(s.buf, s.area))
	_, h := s.buf.Size()
	lines := make([]string, h)
	for y := range lines {
		lines[y] = s.buf.Text(y)
	}
	return strings.Join(lines, "\n")
}

func (s *screen) send(t *testing.T, w widgets.Widget, ev events.Event) widgets.Broadcast {
	t.Helper()
	b, err := w.Dispatch(ev, s.buf, s.area)
	require.NoError(t, err)
	return b
}

func (s *screen) waitFor(t *testing.T, w widgets.Widget, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(s.draw(t, w), text)
	}, 5*time.Second, 10*time.Millisecond, "screen never showed %q", text)
}

func TestApexShowsPodsThenNodes(t *testing.T) {
	apex := NewApex(testClient(testPod("web", "api-0"), testNode("node-1")), Options{})
	defer apex.Close()
	s := newScreen()

	s.waitFor(t, apex, "api-0")
	frame := s.draw(t, apex)
	assert.Contains(t, frame, "kuberift")
	assert.Contains(t, frame, "Pods")
	assert.Contains(t, frame, "1/2")
	assert.Contains(t, frame, "Running")
	assert.NotContains(t, frame, "debug", "debug panel is off below debug level")

	assert.Equal(t, widgets.Consumed, s.send(t, apex, key(terminal.KeyTab)).Kind)
	s.waitFor(t, apex, "node-1")
	frame = s.draw(t, apex)
	assert.Contains(t, frame, "control-plane")
	assert.Contains(t, frame, "v1.30.3")
}

func TestListShowsLoadingUntilSynced(t *testing.T) {
	fakeClient := fake.NewSimpleClientset(testPod("web", "api-0"))
	release := make(chan struct{})
	fakeClient.PrependReactor("list", "pods", func(clienttesting.Action) (bool, runtime.Object, error) {
		<-release
		return false, nil, nil
	})

	list := NewPodList(kube.FromInterface(fakeClient, nil), Options{})
	defer list.Close()
	s := newScreen()

	assert.Contains(t, s.draw(t, list), "Loading...")
	assert.True(t, list.Loading())
	assert.Equal(t, widgets.Ignored, s.send(t, list, key(terminal.KeyEnter)).Kind)

	close(release)
	s.waitFor(t, list, "api-0")
	assert.False(t, list.Loading())
	assert.NotContains(t, s.draw(t, list), "Loading...")
}

func TestListOpensAndClosesDetail(t *testing.T) {
	list := NewPodList(testClient(testPod("web", "api-0"), testPod("web", "api-1")), Options{})
	defer list.Close()
	s := newScreen()
	s.waitFor(t, list, "api-1")

	assert.Equal(t, widgets.Consumed, s.send(t, list, runeKey('j')).Kind)
	assert.Equal(t, widgets.Consumed, s.send(t, list, key(terminal.KeyEnter)).Kind)

	frame := s.draw(t, list)
	assert.Contains(t, frame, "web/api-1")
	assert.Contains(t, frame, "YAML")
	assert.Contains(t, frame, "kind: Pod")
	assert.NotContains(t, frame, "managedFields")
	assert.NotContains(t, frame, "NAMESPACE", "the list is hidden under the detail")

	// Escape pops the detail, a second one leaves the list.
	assert.Equal(t, widgets.Consumed, s.send(t, list, key(terminal.KeyEscape)).Kind)
	assert.Contains(t, s.draw(t, list), "NAMESPACE")
	assert.Equal(t, widgets.Exited, s.send(t, list, key(terminal.KeyEscape)).Kind)
}

func TestListFilterKeepsEscapeLocal(t *testing.T) {
	list := NewPodList(testClient(testPod("web", "api-0"), testPod("web", "db-0")), Options{})
	defer list.Close()
	s := newScreen()
	s.waitFor(t, list, "db-0")

	for _, ev := range []events.Event{runeKey('/'), runeKey('d'), runeKey('b'), key(terminal.KeyEnter)} {
		assert.Equal(t, widgets.Consumed, s.send(t, list, ev).Kind)
	}
	frame := s.draw(t, list)
	assert.Contains(t, frame, "db-0")
	assert.NotContains(t, frame, "api-0")

	assert.Equal(t, widgets.Consumed, s.send(t, list, key(terminal.KeyEscape)).Kind, "escape clears the filter first")
	assert.Contains(t, s.draw(t, list), "api-0")
}

func TestApexEscapeExitsSession(t *testing.T) {
	apex := NewApex(testClient(testPod("web", "api-0")), Options{})
	defer apex.Close()
	s := newScreen()
	s.waitFor(t, apex, "api-0")

	assert.Equal(t, widgets.Exited, s.send(t, apex, key(terminal.KeyEscape)).Kind)
}

func TestPodDetailExecTakesOver(t *testing.T) {
	client := testClient()
	detail := NewPodDetail(client, testPod("web", "api-0"))
	s := newScreen()

	assert.Contains(t, s.draw(t, detail), "x exec")

	b := s.send(t, detail, runeKey('x'))
	require.Equal(t, widgets.RawTakeover, b.Kind)
	exec, ok := b.Raw.(*Exec)
	require.True(t, ok)
	assert.Equal(t, "web", exec.Namespace)
	assert.Equal(t, "api-0", exec.Pod)
	assert.Equal(t, "app", exec.Container)
	assert.Equal(t, DefaultShell, exec.Command)
}

func TestNodeDetailHasNoExec(t *testing.T) {
	detail := NewNodeDetail(testNode("node-1"))
	s := newScreen()

	frame := s.draw(t, detail)
	assert.Contains(t, frame, "node-1")
	assert.NotContains(t, frame, "exec")
	assert.Equal(t, widgets.Ignored, s.send(t, detail, runeKey('x')).Kind)
	assert.Equal(t, ZDetail, detail.ZIndex())
}

func TestApexShowsErrorOverlays(t *testing.T) {
	apex := NewApex(testClient(), Options{})
	defer apex.Close()
	s := newScreen()

	s.send(t, apex, events.Finished{Err: errors.New("command terminated with exit code 1")})
	frame := s.draw(t, apex)
	assert.Contains(t, frame, "Error")
	assert.Contains(t, frame, "exit code 1")

	// The overlay swallows keys until dismissed.
	assert.Equal(t, widgets.Consumed, s.send(t, apex, key(terminal.KeyTab)).Kind)
	assert.Equal(t, widgets.Ignored, s.send(t, apex, key(terminal.KeyEscape)).Kind)
	assert.NotContains(t, s.draw(t, apex), "exit code 1")

	s.send(t, apex, events.Tunnel{Name: "port-forward", Err: errors.New("connection reset")})
	assert.Contains(t, s.draw(t, apex), "port-forward: connection reset")

	s.send(t, apex, key(terminal.KeyEnter))
	s.send(t, apex, events.Finished{})
	assert.NotContains(t, s.draw(t, apex), "Error")
}

func TestApexDebugPanel(t *testing.T) {
	logger := logging.New(logging.Options{Level: "debug", Output: &strings.Builder{}})
	apex := NewApex(testClient(), Options{Logger: logger})
	defer apex.Close()
	s := newScreen()

	s.send(t, apex, events.Resize{Width: 120, Height: 30})
	frame := s.draw(t, apex)
	assert.Contains(t, frame, "debug  frames=")
	assert.Contains(t, frame, "resize(120x30)")
}

func TestWidgetViewsAreCounted(t *testing.T) {
	before := testutil.ToFloat64(metricWidgetViews.WithLabelValues("pod.detail"))
	NewPodDetail(testClient(), testPod("web", "api-0"))
	assert.Equal(t, before+1, testutil.ToFloat64(metricWidgetViews.WithLabelValues("pod.detail")))
}

func TestPodStatus(t *testing.T) {
	p := testPod("web", "api-0")
	assert.Equal(t, "Running", podStatus(p))
	assert.Equal(t, "3", podRestarts(p))

	p.Status.ContainerStatuses[1].State.Waiting = &corev1.ContainerStateWaiting{Reason: "CrashLoopBackOff"}
	assert.Equal(t, "CrashLoopBackOff", podStatus(p))

	now := metav1.Now()
	p.DeletionTimestamp = &now
	assert.Equal(t, "Terminating", podStatus(p))
}

func TestNodeStatusAndRoles(t *testing.T) {
	n := testNode("node-1")
	assert.Equal(t, "Ready", nodeStatus(n))
	assert.Equal(t, "control-plane", nodeRoles(n))

	n.Spec.Unschedulable = true
	n.Status.Conditions[0].Status = corev1.ConditionFalse
	n.Labels = nil
	assert.Equal(t, "NotReady,SchedulingDisabled", nodeStatus(n))
	assert.Equal(t, "<none>", nodeRoles(n))
}

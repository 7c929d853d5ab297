package panels

import (
	"fmt"
	"strconv"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/duration"

	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/resources"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

// NewPodList creates a live list of pods.
func NewPodList(client *kube.Client, opts Options) *List[corev1.Pod] {
	recordView("pod.list")

	store := resources.NewStore(client, resources.Pods,
		resources.WithNamespace(opts.Namespace),
		resources.WithLogger(opts.logger()),
	)
	table := widgets.NewTable(store.State, func(p *corev1.Pod) string { return p.Name },
		widgets.Column[corev1.Pod]{Title: "NAME", Width: runtime.Fill(3), Value: func(p *corev1.Pod) string { return p.Name }},
		widgets.Column[corev1.Pod]{Title: "NAMESPACE", Width: runtime.Fill(2), Value: func(p *corev1.Pod) string { return p.Namespace }},
		widgets.Column[corev1.Pod]{Title: "READY", Width: runtime.Length(7), Value: podReady},
		widgets.Column[corev1.Pod]{Title: "STATUS", Width: runtime.Length(18), Value: podStatus},
		widgets.Column[corev1.Pod]{Title: "RESTARTS", Width: runtime.Length(9), Value: podRestarts},
		widgets.Column[corev1.Pod]{Title: "AGE", Width: runtime.Length(6), Value: func(p *corev1.Pod) string { return age(p.CreationTimestamp.Time) }},
	)

	return newList(store, table, func(p *corev1.Pod) widgets.Widget {
		return NewPodDetail(client, p)
	})
}

// PodsTab is a tab holding a pod list.
func PodsTab(client *kube.Client, opts Options) widgets.Tab {
	return widgets.Tab{Name: "Pods", New: func() widgets.Element {
		return widgets.Element{Widget: NewPodList(client, opts), Terminal: true}
	}}
}

// NewPodDetail shows a pod. When the pod has containers, x opens a shell in
// the first one.
func NewPodDetail(client *kube.Client, pod *corev1.Pod) *Detail {
	recordView("pod.detail")

	clean := pod.DeepCopy()
	clean.ManagedFields = nil
	clean.APIVersion, clean.Kind = "v1", "Pod"

	tabs := widgets.NewTabs(
		widgets.YamlTab("YAML", clean),
		widgets.YamlTab("Status", clean.Status),
	)

	var actions []action
	if len(pod.Spec.Containers) > 0 {
		actions = append(actions, action{key: 'x', hint: "exec", run: func() widgets.Broadcast {
			return widgets.TakeOver(NewExec(client, pod))
		}})
	}
	return newDetail(pod.Namespace+"/"+pod.Name, tabs, actions...)
}

func podReady(p *corev1.Pod) string {
	ready := 0
	for _, cs := range p.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
	}
	return fmt.Sprintf("%d/%d", ready, len(p.Spec.Containers))
}

func podRestarts(p *corev1.Pod) string {
	var n int32
	for _, cs := range p.Status.ContainerStatuses {
		n += cs.RestartCount
	}
	return strconv.Itoa(int(n))
}

// podStatus mirrors the STATUS column of kubectl get pods closely enough for
// browsing: terminating pods and waiting containers win over the phase.
func podStatus(p *corev1.Pod) string {
	if p.DeletionTimestamp != nil {
		return "Terminating"
	}
	for _, cs := range p.Status.ContainerStatuses {
		if w := cs.State.Waiting; w != nil && w.Reason != "" {
			return w.Reason
		}
		if t := cs.State.Terminated; t != nil && t.Reason != "" && p.Status.Phase != corev1.PodSucceeded {
			return t.Reason
		}
	}
	if p.Status.Reason != "" {
		return p.Status.Reason
	}
	if p.Status.Phase == "" {
		return "Unknown"
	}
	return string(p.Status.Phase)
}

func age(created time.Time) string {
	if created.IsZero() {
		return "-"
	}
	return duration.HumanDuration(time.Since(created))
}

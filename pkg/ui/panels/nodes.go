package panels

import (
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"

	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/resources"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

const roleLabelPrefix = "node-role.kubernetes.io/"

// NewNodeList creates a live list of nodes. Nodes are cluster scoped, so the
// namespace option does not apply.
func NewNodeList(client *kube.Client, opts Options) *List[corev1.Node] {
	recordView("node.list")

	store := resources.NewStore(client, resources.Nodes, resources.WithLogger(opts.logger()))
	table := widgets.NewTable(store.State, func(n *corev1.Node) string { return n.Name },
		widgets.Column[corev1.Node]{Title: "NAME", Width: runtime.Fill(3), Value: func(n *corev1.Node) string { return n.Name }},
		widgets.Column[corev1.Node]{Title: "STATUS", Width: runtime.Length(10), Value: nodeStatus},
		widgets.Column[corev1.Node]{Title: "ROLES", Width: runtime.Fill(1), Value: nodeRoles},
		widgets.Column[corev1.Node]{Title: "VERSION", Width: runtime.Length(12), Value: func(n *corev1.Node) string { return n.Status.NodeInfo.KubeletVersion }},
		widgets.Column[corev1.Node]{Title: "AGE", Width: runtime.Length(6), Value: func(n *corev1.Node) string { return age(n.CreationTimestamp.Time) }},
	)

	return newList(store, table, func(n *corev1.Node) widgets.Widget {
		return NewNodeDetail(n)
	})
}

// NodesTab is a tab holding a node list.
func NodesTab(client *kube.Client, opts Options) widgets.Tab {
	return widgets.Tab{Name: "Nodes", New: func() widgets.Element {
		return widgets.Element{Widget: NewNodeList(client, opts), Terminal: true}
	}}
}

// NewNodeDetail shows a node.
func NewNodeDetail(node *corev1.Node) *Detail {
	recordView("node.detail")

	clean := node.DeepCopy()
	clean.ManagedFields = nil
	clean.APIVersion, clean.Kind = "v1", "Node"

	return newDetail(node.Name, widgets.NewTabs(
		widgets.YamlTab("YAML", clean),
		widgets.YamlTab("Status", clean.Status),
	))
}

func nodeStatus(n *corev1.Node) string {
	status := "Unknown"
	for _, c := range n.Status.Conditions {
		if c.Type != corev1.NodeReady {
			continue
		}
		if c.Status == corev1.ConditionTrue {
			status = "Ready"
		} else {
			status = "NotReady"
		}
	}
	if n.Spec.Unschedulable {
		status += ",SchedulingDisabled"
	}
	return status
}

func nodeRoles(n *corev1.Node) string {
	var roles []string
	for label := range n.Labels {
		if role, ok := strings.CutPrefix(label, roleLabelPrefix); ok && role != "" {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return "<none>"
	}
	sort.Strings(roles)
	return strings.Join(roles, ",")
}

// Package resources keeps live, read-only snapshots of cluster resources for
// widgets to draw from.
package resources

import (
	"context"
	"sort"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"

	"github.com/odvcencio/kuberift/pkg/logging"
)

// Kind describes how to watch one resource type.
type Kind[K any] struct {
	Name     string
	Informer func(informers.SharedInformerFactory) cache.SharedIndexInformer
}

// Pods watches core/v1 pods.
var Pods = Kind[corev1.Pod]{
	Name: "pods",
	Informer: func(f informers.SharedInformerFactory) cache.SharedIndexInformer {
		return f.Core().V1().Pods().Informer()
	},
}

// Nodes watches core/v1 nodes.
var Nodes = Kind[corev1.Node]{
	Name: "nodes",
	Informer: func(f informers.SharedInformerFactory) cache.SharedIndexInformer {
		return f.Core().V1().Nodes().Informer()
	},
}

// Option configures a Store.
type Option func(*options)

type options struct {
	namespace string
	resync    time.Duration
	logger    *logging.Logger
}

// WithNamespace limits the watch to one namespace.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithResync sets the informer resync period. Zero disables resync.
func WithResync(d time.Duration) Option {
	return func(o *options) { o.resync = d }
}

// WithLogger sets where watch errors are reported.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Store reflects a watched collection into memory. Reads never block on the
// watch. Objects returned by a Store are shared and must not be modified.
type Store[K any] struct {
	kind     Kind[K]
	informer cache.SharedIndexInformer

	cancel context.CancelFunc
	done   chan struct{}
	synced chan struct{}

	mu     sync.RWMutex
	closed bool
	frozen []*K
}

// NewStore starts watching kind in the background and returns immediately.
// The watch runs until Close.
func NewStore[K any](client kubernetes.Interface, kind Kind[K], opts ...Option) *Store[K] {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	factory := informers.NewSharedInformerFactoryWithOptions(client, o.resync, informers.WithNamespace(o.namespace))
	informer := kind.Informer(factory)

	logger := o.logger.WithComponent("store")
	_ = informer.SetWatchErrorHandler(func(r *cache.Reflector, err error) {
		logger.WatchError(kind.Name, err)
		cache.DefaultWatchErrorHandler(r, err)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store[K]{
		kind:     kind,
		informer: informer,
		cancel:   cancel,
		done:     make(chan struct{}),
		synced:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		informer.Run(ctx.Done())
	}()
	go func() {
		if cache.WaitForCacheSync(ctx.Done(), informer.HasSynced) {
			close(s.synced)
		}
	}()

	return s
}

// Kind returns the watched resource name.
func (s *Store[K]) Kind() string {
	return s.kind.Name
}

// Synced is closed once the initial list has been loaded.
func (s *Store[K]) Synced() <-chan struct{} {
	return s.synced
}

// Loading reports whether the initial list is still outstanding.
func (s *Store[K]) Loading() bool {
	select {
	case <-s.synced:
		return false
	default:
		return true
	}
}

// State returns the current snapshot ordered by namespace and name.
func (s *Store[K]) State() []*K {
	s.mu.RLock()
	if s.closed {
		defer s.mu.RUnlock()
		return s.frozen
	}
	s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store[K]) snapshot() []*K {
	objs := s.informer.GetStore().List()
	type keyed struct {
		key string
		obj *K
	}
	items := make([]keyed, 0, len(objs))
	for _, o := range objs {
		obj, ok := o.(*K)
		if !ok {
			continue
		}
		key, err := cache.MetaNamespaceKeyFunc(o)
		if err != nil {
			continue
		}
		items = append(items, keyed{key: key, obj: obj})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })

	out := make([]*K, len(items))
	for i, it := range items {
		out[i] = it.obj
	}
	return out
}

// Get looks up an object by its namespace/name key.
func (s *Store[K]) Get(key string) (*K, bool) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		for _, obj := range s.State() {
			if k, err := cache.MetaNamespaceKeyFunc(obj); err == nil && k == key {
				return obj, true
			}
		}
		return nil, false
	}

	o, exists, err := s.informer.GetStore().GetByKey(key)
	if err != nil || !exists {
		return nil, false
	}
	obj, ok := o.(*K)
	return obj, ok
}

// Close stops the watch and waits for it to exit. The last snapshot stays
// readable. Close is safe to call more than once.
func (s *Store[K]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.cancel()
	<-s.done

	frozen := s.snapshot()
	s.mu.Lock()
	s.closed = true
	s.frozen = frozen
	s.mu.Unlock()
}

package lib

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dispatcher", func() {
	var (
		root string
		proc *fakeProcessor
		out  *bytes.Buffer
	)

	touch := func(names ...string) {
		for _, name := range names {
			path := filepath.Join(root, filepath.FromSlash(name))
			Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
			Expect(os.WriteFile(path, []byte(name), 0o644)).To(Succeed())
		}
	}

	present := func(name string) bool {
		return exists(filepath.Join(root, filepath.FromSlash(name)))
	}

	run := func(ctx context.Context, action Action, input string) error {
		cfg := DefaultConfig()
		cfg.Roots = []string{root}
		cfg.Action = action
		cfg.WaitTimeout = 50 * time.Millisecond

		app := NewApp(cfg, proc, PermanentRemover{}, NewGate(strings.NewReader(input), out, 0))
		app.Out = out
		app.ProgressOut = io.Discard
		return app.Run(ctx)
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		proc = &fakeProcessor{}
		out = &bytes.Buffer{}
	})

	Context("listing duplicates", func() {
		It("prints only files with an mp4 sibling", func() {
			touch("X.mkv", "X.mp4", "Y.mkv")

			Expect(run(context.Background(), ActionList, "")).To(Succeed())
			Expect(strings.Fields(out.String())).To(ConsistOf(filepath.Join(root, "X.mkv")))
			Expect(present("Y.mkv")).To(BeTrue())
		})

		It("treats m4v the same as mkv", func() {
			touch("show/E01.m4v", "show/E01.mp4")

			Expect(run(context.Background(), ActionList, "")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(filepath.Join(root, "show", "E01.m4v")))
		})

		It("never matches across directories", func() {
			touch("a/X.mkv", "b/X.mp4")

			Expect(run(context.Background(), ActionList, "")).To(Succeed())
			Expect(strings.TrimSpace(out.String())).To(BeEmpty())
		})
	})

	Context("sending to the processor", func() {
		It("enqueues pending files and starts the queue once", func() {
			touch("X.mkv", "X.mp4", "Y.mkv")

			Expect(run(context.Background(), ActionSend, "")).To(Succeed())
			Expect(proc.enqueued).To(Equal([]string{filepath.Join(root, "Y.mkv")}))
			Expect(proc.starts).To(Equal(1))
			Expect(present("Y.mkv")).To(BeTrue())
		})
	})

	Context("waiting for the processor", func() {
		It("removes the original only after completion", func() {
			touch("Y.mkv")

			Expect(run(context.Background(), ActionWait, "")).To(Succeed())
			Expect(proc.waits).To(Equal(1))
			Expect(present("Y.mkv")).To(BeFalse())
		})

		It("keeps the original when the wait times out", func() {
			touch("Z.mkv")
			proc.waitFn = func(ctx context.Context, _ string, timeout time.Duration) error {
				return neverFinishes(ctx, timeout)
			}

			Expect(run(context.Background(), ActionWait, "")).To(Succeed())
			Expect(present("Z.mkv")).To(BeTrue())
		})
	})

	Context("removing duplicates", func() {
		BeforeEach(func() {
			touch("X.mkv", "X.mp4", "Y.mkv")
		})

		It("removes confirmed duplicates and keeps their siblings", func() {
			Expect(run(context.Background(), ActionRemove, "yes\nyes\n")).To(Succeed())
			Expect(present("X.mkv")).To(BeFalse())
			Expect(present("X.mp4")).To(BeTrue())
			Expect(present("Y.mkv")).To(BeTrue())
		})

		It("changes nothing when the first answer is no", func() {
			before := snapshot(GinkgoT(), root)

			Expect(run(context.Background(), ActionRemove, "no\n")).To(Succeed())
			Expect(snapshot(GinkgoT(), root)).To(Equal(before))
		})

		It("changes nothing when only the first answer is yes", func() {
			before := snapshot(GinkgoT(), root)

			Expect(run(context.Background(), ActionRemove, "y\n")).To(Succeed())
			Expect(snapshot(GinkgoT(), root)).To(Equal(before))
		})

		It("stops without deleting when interrupted at the prompt", func() {
			before := snapshot(GinkgoT(), root)
			ctx, cancel := context.WithCancel(context.Background())
			pr, pw := io.Pipe()
			defer pw.Close()

			cfg := DefaultConfig()
			cfg.Roots = []string{root}
			cfg.Action = ActionRemove
			app := NewApp(cfg, proc, PermanentRemover{}, NewGate(pr, out, 0))
			app.Out = out
			app.ProgressOut = io.Discard

			time.AfterFunc(20*time.Millisecond, cancel)
			Expect(app.Run(ctx)).To(MatchError(context.Canceled))
			Expect(snapshot(GinkgoT(), root)).To(Equal(before))
		})
	})
})

package tests

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamtable/streamtable"
)

var _ = Describe("Streamtable against a live backend", func() {

	It("writes sequentially across two calls", func() {
		partitionKey := freshPartitionKey("seq")
		header, err := store.Provision(ctx, partitionKey, streamtable.PropertyMap{"kind": "order"})
		Expect(err).NotTo(HaveOccurred())
		Expect(header.Version).To(Equal(int64(0)))

		header, _, err = store.Write(ctx, header, []streamtable.EventData{
			streamtable.NewEventData(streamtable.PropertyMap{"n": int64(1)}),
			streamtable.NewEventData(streamtable.PropertyMap{"n": int64(2)}),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(header.Version).To(Equal(int64(2)))

		header, _, err = store.Write(ctx, header, []streamtable.EventData{
			streamtable.NewEventData(streamtable.PropertyMap{"n": int64(3)}),
			streamtable.NewEventData(streamtable.PropertyMap{"n": int64(4)}),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(header.Version).To(Equal(int64(4)))

		slice, err := streamtable.Read(ctx, store, partitionKey, 1, 10, streamtable.PropertyMapTransform)
		Expect(err).NotTo(HaveOccurred())
		Expect(slice.Events).To(HaveLen(4))
		Expect(slice.IsEndOfStream).To(BeTrue())
	})

	It("rejects a duplicate event id", func() {
		partitionKey := freshPartitionKey("ids")
		header, err := store.Provision(ctx, partitionKey, nil)
		Expect(err).NotTo(HaveOccurred())

		header, _, err = store.Write(ctx, header, []streamtable.EventData{
			streamtable.NewEventDataWithId("a", streamtable.PropertyMap{}),
			streamtable.NewEventDataWithId("b", streamtable.PropertyMap{}),
		})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = store.Write(ctx, header, []streamtable.EventData{
			streamtable.NewEventDataWithId("b", streamtable.PropertyMap{}),
		})
		Expect(streamtable.IsDuplicateEvent(err)).To(BeTrue())
	})

	It("raises a concurrency conflict for a second writer racing the first", func() {
		partitionKey := freshPartitionKey("race")
		_, err := store.Provision(ctx, partitionKey, nil)
		Expect(err).NotTo(HaveOccurred())

		h1, err := store.Open(ctx, partitionKey)
		Expect(err).NotTo(HaveOccurred())
		h2, err := store.Open(ctx, partitionKey)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = store.Write(ctx, h1, []streamtable.EventData{streamtable.NewEventData(streamtable.PropertyMap{"who": "h1"})})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = store.Write(ctx, h2, []streamtable.EventData{streamtable.NewEventData(streamtable.PropertyMap{"who": "h2"})})
		Expect(streamtable.IsConcurrencyConflict(err)).To(BeTrue())

		header, err := store.Open(ctx, partitionKey)
		Expect(err).NotTo(HaveOccurred())
		Expect(header.Version).To(Equal(int64(1)))
	})

	It("supports writing by expected version instead of a held header", func() {
		partitionKey := freshPartitionKey("expver")
		_, err := store.Provision(ctx, partitionKey, nil)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = store.WriteExpectedVersion(ctx, partitionKey, 0, []streamtable.EventData{
			streamtable.NewEventData(streamtable.PropertyMap{"x": int64(1)}),
		})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = store.WriteExpectedVersion(ctx, partitionKey, 0, []streamtable.EventData{
			streamtable.NewEventData(streamtable.PropertyMap{"y": int64(1)}),
		})
		Expect(streamtable.IsConcurrencyConflict(err)).To(BeTrue())
	})
})

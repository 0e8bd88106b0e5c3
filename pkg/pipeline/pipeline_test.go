package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/extract"
	"github.com/ilkoid/sommelier-ai/pkg/intent"
)

// Счётные фейки коллабораторов: фиксируют число вызовов, чтобы тесты
// могли проверять, какие стадии реально выполнялись.

type fakeSearcher struct {
	result *catalog.SearchResult
	err    error
	calls  int
}

func (f *fakeSearcher) Search(ctx context.Context, term string) (*catalog.SearchResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeDetailer struct {
	detail *catalog.ProductDetail
	err    error
	calls  int
}

func (f *fakeDetailer) Detail(ctx context.Context, reqPath string, lwin string) (*catalog.ProductDetail, error) {
	f.calls++
	return f.detail, f.err
}

type fakeMutator struct {
	result  *catalog.AddToCartResult
	err     error
	calls   int
	lastQty int
}

func (f *fakeMutator) AddToCart(ctx context.Context, productID string, qty int) (*catalog.AddToCartResult, error) {
	f.calls++
	f.lastQty = qty
	return f.result, f.err
}

// margauxCandidates — типичный ответ поиска: производитель первым,
// затем продукт без lwin, затем покупаемый продукт.
func margauxCandidates() *catalog.SearchResult {
	return &catalog.SearchResult{
		Found: true,
		Candidates: []catalog.Candidate{
			{Type: catalog.CandidateProducer, Name: "Chateau Margaux", URL: "https://uk.crustaging.com/producer/margaux"},
			{Type: catalog.CandidateProduct, Name: "Chateau Margaux 2014", URL: "https://uk.crustaging.com/chateau-margaux-2014", Lwin: ""},
			{Type: catalog.CandidateProduct, Name: "Chateau Margaux 2015", URL: "https://uk.crustaging.com/chateau-margaux-2015", Lwin: "1011247"},
		},
	}
}

func newTestPipeline(t *testing.T, s *fakeSearcher, d *fakeDetailer, m *fakeMutator, store *cart.Store) *Pipeline {
	t.Helper()

	p, err := New(Config{Search: s, Detail: d, Mutate: m, Store: store})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func TestResolveAddToCart(t *testing.T) {
	searcher := &fakeSearcher{result: margauxCandidates()}
	detailer := &fakeDetailer{detail: &catalog.ProductDetail{
		ShortName:        "Chateau Margaux 2015",
		StockLocation:    "London",
		StockLocationETA: "3-5 days",
		Offers:           []catalog.Offer{{ProductID: "98765", QtyAvailable: 20}},
	}}
	mutator := &fakeMutator{result: &catalog.AddToCartResult{
		Confirmed: true,
		Items: []catalog.CartItem{{
			ItemID:   "555",
			Name:     "Chateau Margaux 2015",
			Quantity: 12,
			Price:    450.0,
		}},
	}}
	store := cart.NewStore()
	p := newTestPipeline(t, searcher, detailer, mutator, store)

	res := p.Resolve(context.Background(), extract.Request{Name: "Chateau Margaux", Quantity: 12}, intent.AddToCart)

	if res.Failed() {
		t.Fatalf("Resolve() failed: %+v", res.Err)
	}
	if res.Kind != Added {
		t.Fatalf("Kind = %q, want %q", res.Kind, Added)
	}
	if mutator.lastQty != 12 {
		t.Errorf("mutator received qty %d, want 12", mutator.lastQty)
	}
	if store.Len() != 1 {
		t.Fatalf("cart has %d lines, want exactly 1", store.Len())
	}

	line := store.Snapshot()[0]
	if line.Quantity != 12 {
		t.Errorf("line.Quantity = %d, want 12", line.Quantity)
	}
	if line.Warehouse != "London" || line.ETA != "3-5 days" {
		t.Errorf("line warehouse/eta = %q/%q, want values from product detail", line.Warehouse, line.ETA)
	}
	if line.ItemID != "555" {
		t.Errorf("line.ItemID = %q, want value from mutation response", line.ItemID)
	}
}

func TestResolveInsufficientStockDoesNotMutate(t *testing.T) {
	searcher := &fakeSearcher{result: margauxCandidates()}
	detailer := &fakeDetailer{detail: &catalog.ProductDetail{
		ShortName: "Chateau Margaux 2015",
		Offers:    []catalog.Offer{{ProductID: "98765", QtyAvailable: 5}},
	}}
	mutator := &fakeMutator{}
	store := cart.NewStore()
	p := newTestPipeline(t, searcher, detailer, mutator, store)

	res := p.Resolve(context.Background(), extract.Request{Name: "Chateau Margaux", Quantity: 12}, intent.AddToCart)

	if !res.Failed() || res.Err.Code != InsufficientStock {
		t.Fatalf("want InsufficientStock failure, got %+v", res)
	}
	if mutator.calls != 0 {
		t.Errorf("mutator called %d times, the quantity gate must run before any mutation", mutator.calls)
	}
	if store.Len() != 0 {
		t.Errorf("cart has %d lines, want 0 after rejected attempt", store.Len())
	}
}

func TestResolveNotFound(t *testing.T) {
	searcher := &fakeSearcher{result: &catalog.SearchResult{Found: false}}
	detailer := &fakeDetailer{}
	mutator := &fakeMutator{}
	p := newTestPipeline(t, searcher, detailer, mutator, cart.NewStore())

	res := p.Resolve(context.Background(), extract.Request{Name: "Nonexistent Wine", Quantity: 1}, intent.Stock)

	if !res.Failed() || res.Err.Code != NotFound {
		t.Fatalf("want NotFound failure, got %+v", res)
	}
	if detailer.calls != 0 || mutator.calls != 0 {
		t.Errorf("detail/mutate called %d/%d times, want 0/0 after empty search", detailer.calls, mutator.calls)
	}
}

func TestResolveSkipsProducersAndLwinless(t *testing.T) {
	searcher := &fakeSearcher{result: margauxCandidates()}
	detailer := &fakeDetailer{detail: &catalog.ProductDetail{
		ShortName: "Chateau Margaux 2015",
		Offers:    []catalog.Offer{{ProductID: "98765", QtyAvailable: 3}},
	}}
	p := newTestPipeline(t, searcher, detailer, &fakeMutator{}, cart.NewStore())

	res := p.Resolve(context.Background(), extract.Request{Name: "chateau margaux", Quantity: 1}, intent.Description)

	if res.Failed() {
		t.Fatalf("Resolve() failed: %+v", res.Err)
	}
	if res.Candidate == nil || res.Candidate.Lwin != "1011247" {
		t.Fatalf("picked candidate %+v, want the first purchasable product", res.Candidate)
	}
}

func TestResolveNoMatchingSubstring(t *testing.T) {
	searcher := &fakeSearcher{result: margauxCandidates()}
	p := newTestPipeline(t, searcher, &fakeDetailer{}, &fakeMutator{}, cart.NewStore())

	res := p.Resolve(context.Background(), extract.Request{Name: "Sassicaia", Quantity: 1}, intent.Stock)

	if !res.Failed() || res.Err.Code != NotFound {
		t.Fatalf("want NotFound when no candidate name contains the query, got %+v", res)
	}
}

func TestResolveMissingIdentifiers(t *testing.T) {
	searcher := &fakeSearcher{result: &catalog.SearchResult{
		Found: true,
		Candidates: []catalog.Candidate{
			// lwin есть, но URL слишком короткий чтобы вывести req_path
			{Type: catalog.CandidateProduct, Name: "Broken Wine", URL: "bad", Lwin: "111"},
		},
	}}
	detailer := &fakeDetailer{}
	p := newTestPipeline(t, searcher, detailer, &fakeMutator{}, cart.NewStore())

	res := p.Resolve(context.Background(), extract.Request{Name: "Broken Wine", Quantity: 1}, intent.Stock)

	if !res.Failed() || res.Err.Code != MissingIdentifiers {
		t.Fatalf("want MissingIdentifiers failure, got %+v", res)
	}
	if detailer.calls != 0 {
		t.Errorf("detail called %d times, want 0 for candidate without identifiers", detailer.calls)
	}
}

func TestResolveUpstreamFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	p := newTestPipeline(t, searcher, &fakeDetailer{}, &fakeMutator{}, cart.NewStore())

	res := p.Resolve(context.Background(), extract.Request{Name: "Margaux", Quantity: 1}, intent.Stock)

	if !res.Failed() || res.Err.Code != UpstreamFailure {
		t.Fatalf("want UpstreamFailure, got %+v", res)
	}
	if res.Err.Cause == nil {
		t.Error("Failure.Cause should carry the original error")
	}
}

func TestResolveCartRejected(t *testing.T) {
	searcher := &fakeSearcher{result: margauxCandidates()}
	detailer := &fakeDetailer{detail: &catalog.ProductDetail{
		Offers: []catalog.Offer{{ProductID: "98765", QtyAvailable: 20}},
	}}
	mutator := &fakeMutator{result: &catalog.AddToCartResult{Confirmed: false}}
	store := cart.NewStore()
	p := newTestPipeline(t, searcher, detailer, mutator, store)

	res := p.Resolve(context.Background(), extract.Request{Name: "Chateau Margaux", Quantity: 2}, intent.AddToCart)

	if !res.Failed() || res.Err.Code != CartRejected {
		t.Fatalf("want CartRejected, got %+v", res)
	}
	if store.Len() != 0 {
		t.Errorf("cart has %d lines, unconfirmed mutation must not append", store.Len())
	}
}

func TestResolveShowCartBypassesNetwork(t *testing.T) {
	searcher := &fakeSearcher{}
	detailer := &fakeDetailer{}
	mutator := &fakeMutator{}
	store := cart.NewStore()
	store.Append(cart.Line{Name: "Sassicaia 2019", Quantity: 6})
	p := newTestPipeline(t, searcher, detailer, mutator, store)

	res := p.Resolve(context.Background(), extract.Request{}, intent.ShowCart)

	if res.Kind != CartView {
		t.Fatalf("Kind = %q, want %q", res.Kind, CartView)
	}
	if len(res.CartLines) != 1 {
		t.Fatalf("snapshot has %d lines, want 1", len(res.CartLines))
	}
	if searcher.calls+detailer.calls+mutator.calls != 0 {
		t.Error("show_cart must not touch the network")
	}
}

func TestResolveNoPurchasableOffer(t *testing.T) {
	searcher := &fakeSearcher{result: margauxCandidates()}
	detailer := &fakeDetailer{detail: &catalog.ProductDetail{
		// Офферы без product_id или без остатка — непокупаемые
		Offers: []catalog.Offer{{ProductID: "", QtyAvailable: 9}, {ProductID: "123", QtyAvailable: 0}},
	}}
	mutator := &fakeMutator{}
	p := newTestPipeline(t, searcher, detailer, mutator, cart.NewStore())

	res := p.Resolve(context.Background(), extract.Request{Name: "Chateau Margaux", Quantity: 1}, intent.AddToCart)

	if !res.Failed() || res.Err.Code != InsufficientStock {
		t.Fatalf("want InsufficientStock when no offer is purchasable, got %+v", res)
	}
	if mutator.calls != 0 {
		t.Error("mutation must not run without a purchasable offer")
	}
}

package capture

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ihsan606/win-store/internal/models"
)

type fakePusher struct {
	err    error
	pushes []struct {
		tab     TabID
		msgType string
	}
}

func (f *fakePusher) Push(tab TabID, msgType string, payload any) error {
	f.pushes = append(f.pushes, struct {
		tab     TabID
		msgType string
	}{tab, msgType})
	return f.err
}

func TestPullBeforeAnyCapture(t *testing.T) {
	d := NewDispatcher(NewStore(), &fakePusher{}, nil)

	if snap := d.CapturedData("t1"); snap != nil {
		t.Fatalf("pull before any capture = %+v, want nil", snap)
	}
	if res := d.SearchData("t1"); res != nil {
		t.Fatalf("search pull before capture = %+v, want nil", res)
	}
	if res := d.CategoryData("t1"); res != nil {
		t.Fatalf("category pull before capture = %+v, want nil", res)
	}
}

func TestPullAfterUpsertMatchesPush(t *testing.T) {
	store := NewStore()
	pusher := &fakePusher{}
	d := NewDispatcher(store, pusher, nil)
	tab := TabID("t1")

	store.UpsertProducts(tab, []models.Product{{ItemID: 1, ShopID: 2, Name: "X"}}, 10)
	d.PushCaptured(tab)

	pulled := d.CapturedData(tab)
	if pulled == nil || pulled.CapturedCount != 1 {
		t.Fatalf("pull after upsert = %+v, want one product", pulled)
	}
	if len(pusher.pushes) != 1 || pusher.pushes[0].msgType != MsgDataUpdate {
		t.Fatalf("pushes = %+v, want one SHOPEE_DATA_UPDATE", pusher.pushes)
	}
	// Pull must equal what the push delivered: both read the same store.
	if !reflect.DeepEqual(pulled, store.Snapshot(tab)) {
		t.Fatal("pull snapshot diverges from pushed snapshot")
	}
}

func TestPushFailureSwallowed(t *testing.T) {
	store := NewStore()
	d := NewDispatcher(store, &fakePusher{err: errors.New("no receiver")}, nil)
	tab := TabID("t1")

	store.UpsertProducts(tab, []models.Product{{ItemID: 1}}, 0)

	// A push with no receiver must not panic or propagate.
	d.PushCaptured(tab)

	if snap := d.CapturedData(tab); snap == nil || snap.CapturedCount != 1 {
		t.Fatalf("state lost after failed push: %+v", snap)
	}
}

func TestPushSkipsEmptyCaches(t *testing.T) {
	pusher := &fakePusher{}
	d := NewDispatcher(NewStore(), pusher, nil)

	d.PushCaptured("t1")
	d.PushSearch("t1")
	d.PushCategory("t1")

	if len(pusher.pushes) != 0 {
		t.Fatalf("pushes for empty tab = %+v, want none", pusher.pushes)
	}
}

func TestSearchAndCategoryRoundTrip(t *testing.T) {
	store := NewStore()
	pusher := &fakePusher{}
	d := NewDispatcher(store, pusher, nil)
	tab := TabID("t1")
	now := time.Now()

	store.SetSearchCache(tab, &models.SearchResult{TotalCount: 5, CapturedAt: now})
	d.PushSearch(tab)
	store.SetCategoryCache(tab, &models.CategoryResult{CapturedAt: now})
	d.PushCategory(tab)

	if got := d.SearchData(tab); got == nil || got.TotalCount != 5 {
		t.Fatalf("search pull = %+v", got)
	}
	if got := d.CategoryData(tab); got == nil {
		t.Fatal("category pull = nil")
	}
	if len(pusher.pushes) != 2 ||
		pusher.pushes[0].msgType != MsgSearchUpdate ||
		pusher.pushes[1].msgType != MsgCategoryUpdate {
		t.Fatalf("pushes = %+v", pusher.pushes)
	}
}

func TestNilPusherIsPullOnly(t *testing.T) {
	store := NewStore()
	d := NewDispatcher(store, nil, nil)
	tab := TabID("t1")

	store.UpsertProducts(tab, []models.Product{{ItemID: 1}}, 0)
	d.PushCaptured(tab) // must not panic

	if snap := d.CapturedData(tab); snap == nil {
		t.Fatal("pull-only dispatcher should still answer pulls")
	}
}

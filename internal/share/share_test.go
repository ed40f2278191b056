package share

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/resolver"
	"github.com/idilsaglam/shoplist/internal/store"
)

func doc() *model.Document {
	d := model.NewDefaultDocument()
	d.Categories[2].Items = []model.Item{
		{Name: "Café ☕", Price: 4.2, Qty: 1},
		{Name: "Té verde", Price: 2, Qty: 3, Checked: true},
	}
	return d
}

func TestLinkURL_SurvivesQueryDecoding(t *testing.T) {
	d := doc()
	link, err := LinkURL("https://shoplist.app/?old=1#frag", d)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !strings.HasPrefix(link, "https://shoplist.app/?list=") {
		t.Fatalf("unexpected link %q", link)
	}
	if strings.Contains(link, "+") {
		t.Fatalf("raw '+' left in query: %q", link)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	enc, _ := codec.Encode(d)
	if got := u.Query().Get("list"); got != enc {
		t.Fatalf("query value mangled:\n got %s\nwant %s", got, enc)
	}

	r := resolver.New(store.NewSession(store.NewMemory()), nil)
	res, err := r.Resolve(u)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Outcome != resolver.FromPayload || !reflect.DeepEqual(res.Doc, d) {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestFragmentURL(t *testing.T) {
	d := doc()
	link, err := FragmentURL("https://shoplist.app/app", d)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.RawQuery != "" || u.Fragment == "" {
		t.Fatalf("expected fragment only, got %q", link)
	}
	got, err := codec.Decode(u.Fragment)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Fatalf("fragment round trip mismatch")
	}
}

func TestCodeURL(t *testing.T) {
	if got := CodeURL("https://shoplist.app/", "AB12C"); got != "https://shoplist.app/?code=AB12C" {
		t.Fatalf("unexpected code url %q", got)
	}
}

func TestLinks_ReplaceQueryAndFragmentOfBase(t *testing.T) {
	base := "https://shoplist.app/app?code=OLD01#list=stale"
	if got := CodeURL(base, "NEW01"); got != "https://shoplist.app/app?code=NEW01" {
		t.Fatalf("unexpected code url %q", got)
	}
	link, err := FragmentURL(base, doc())
	if err != nil {
		t.Fatalf("fragment url: %v", err)
	}
	if !strings.HasPrefix(link, "https://shoplist.app/app#") || strings.Contains(link, "stale") {
		t.Fatalf("unexpected fragment url %q", link)
	}
}

func TestQRImageURL(t *testing.T) {
	link := "https://shoplist.app/?list=a%2Bb"
	got := QR{}.ImageURL(link)
	want := "https://api.qrserver.com/v1/create-qr-code/?size=250x250&data=" + url.QueryEscape(link)
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	custom := QR{Endpoint: "https://qr.example/render?fmt=svg", Size: 120}.ImageURL("x")
	if custom != "https://qr.example/render?fmt=svg&size=120x120&data=x" {
		t.Fatalf("unexpected custom url %q", custom)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Query().Get("data") != link {
		t.Fatalf("share link not recoverable from QR url")
	}
}

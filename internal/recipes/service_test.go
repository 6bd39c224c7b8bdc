package recipes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/language"

	"github.com/starford/opskrifter/internal/apperr"
	"github.com/starford/opskrifter/internal/content"
	"github.com/starford/opskrifter/internal/testutil"
)

func testService(t *testing.T, opts ...Option) (*Service, string) {
	t.Helper()
	dir := testutil.ContentDir(t)
	loader, err := content.NewLoader(dir, content.WithLogger(testutil.DiscardLogger()))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	return NewService(loader, opts...), dir
}

func titles(t *testing.T, svc *Service) []string {
	t.Helper()
	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestList_DanishCollation(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "aebletaerte", "", "title", "Æbletærte")
	testutil.WriteRecipe(t, dir, "boller", "", "title", "Boller")
	testutil.WriteRecipe(t, dir, "ananaskage", "", "title", "Ananaskage")

	got := titles(t, svc)
	want := []string{"Ananaskage", "Boller", "Æbletærte"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestList_DanishLettersAfterZ(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "a", "", "title", "Ølbrød")
	testutil.WriteRecipe(t, dir, "b", "", "title", "Æggekage")
	testutil.WriteRecipe(t, dir, "c", "", "title", "Zucchinisuppe")
	testutil.WriteRecipe(t, dir, "d", "", "title", "Åleragout")

	got := titles(t, svc)
	want := []string{"Zucchinisuppe", "Æggekage", "Ølbrød", "Åleragout"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestList_EnglishCollation(t *testing.T) {
	svc, dir := testService(t, WithLanguage(language.English))
	testutil.WriteRecipe(t, dir, "aebletaerte", "", "title", "Æbletærte")
	testutil.WriteRecipe(t, dir, "boller", "", "title", "Boller")
	testutil.WriteRecipe(t, dir, "ananaskage", "", "title", "Ananaskage")

	got := titles(t, svc)
	want := []string{"Ananaskage", "Æbletærte", "Boller"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestList_TitleTieBreaksOnSlug(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "zz", "", "title", "Kage")
	testutil.WriteRecipe(t, dir, "aa", "", "title", "Kage")

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items[0].Slug != "aa" || items[1].Slug != "zz" {
		t.Errorf("slugs = %s, %s", items[0].Slug, items[1].Slug)
	}
}

func TestList_DefaultsApplied(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "boller", "body", "title", "Boller")

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	it := items[0]
	if it.Time != DefaultTime {
		t.Errorf("time = %v, want %d", it.Time, DefaultTime)
	}
	if it.Difficulty != DefaultDifficulty {
		t.Errorf("difficulty = %q", it.Difficulty)
	}
	if it.Servings != DefaultServings {
		t.Errorf("servings = %v", it.Servings)
	}
	if it.Categories == nil || len(it.Categories) != 0 {
		t.Errorf("categories = %#v, want empty slice", it.Categories)
	}
	if it.Slug != "boller" || it.Path != "/opskrifter/boller" {
		t.Errorf("slug = %q, path = %q", it.Slug, it.Path)
	}
	if it.Image != "" || it.Description != "" {
		t.Errorf("image = %q, description = %q", it.Image, it.Description)
	}
}

func TestList_FieldsProjected(t *testing.T) {
	svc, dir := testService(t, WithURLPrefix("/recipes/"))
	testutil.WriteRecipe(t, dir, "boller", "",
		"title", `"Boller"`,
		"description", "Bløde",
		"image", "/img/boller.jpg",
		"time", "45",
		"difficulty", "Svær",
		"servings", "ca. 12",
		"categories", "[bagværk, morgenmad]",
	)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	it := items[0]
	if it.Time != 45 {
		t.Errorf("time = %#v, want 45", it.Time)
	}
	if it.Servings != "ca. 12" {
		t.Errorf("servings = %#v, want raw string", it.Servings)
	}
	if it.Difficulty != "Svær" || it.Image != "/img/boller.jpg" || it.Description != "Bløde" {
		t.Errorf("unexpected projection %+v", it)
	}
	if !reflect.DeepEqual(it.Categories, []string{"bagværk", "morgenmad"}) {
		t.Errorf("categories = %v", it.Categories)
	}
	if it.Path != "/recipes/boller" {
		t.Errorf("path = %q", it.Path)
	}
}

func TestList_MissingTitleExcludedButFetchable(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "uden-titel", "Kun tekst.\n", "description", "ingen titel")
	testutil.WriteRecipe(t, dir, "boller", "", "title", "Boller")

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Slug != "boller" {
		t.Errorf("items = %+v, want only boller", items)
	}

	d, err := svc.Get(context.Background(), "uden-titel")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Title != "uden-titel" {
		t.Errorf("title = %q, want slug", d.Title)
	}
	if d.Body != "Kun tekst.\n" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestList_PartialFailure(t *testing.T) {
	svc, dir := testService(t)
	for i := 0; i < 9; i++ {
		testutil.WriteRecipe(t, dir, fmt.Sprintf("r%d", i), "", "title", fmt.Sprintf("Ret %d", i))
	}
	testutil.BrokenLink(t, dir, "r9.md")

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 9 {
		t.Errorf("len = %d, want 9", len(items))
	}
}

func TestList_MissingDirectory(t *testing.T) {
	loader, _ := content.NewLoader(filepath.Join(t.TempDir(), "missing"))
	svc := NewService(loader)
	if _, err := svc.List(context.Background()); !errors.Is(err, apperr.ErrDirectoryNotFound) {
		t.Errorf("err = %v, want ErrDirectoryNotFound", err)
	}
}

func TestGet_NoDefaultsForTimeAndImage(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "boller", "# Boller\n", "title", "Boller")

	d, err := svc.Get(context.Background(), "boller")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Time != nil {
		t.Errorf("time = %#v, want nil", d.Time)
	}
	if d.Image != "" {
		t.Errorf("image = %q, want empty", d.Image)
	}
	if d.Difficulty != DefaultDifficulty || d.Servings != DefaultServings {
		t.Errorf("difficulty = %q, servings = %v", d.Difficulty, d.Servings)
	}
	if d.Body != "# Boller\n" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Get(context.Background(), "nonexistent"); !errors.Is(err, apperr.ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestNumberOr(t *testing.T) {
	if got := numberOr("", 30); got != 30 {
		t.Errorf("empty = %v", got)
	}
	if got := numberOr("15", 30); got != 15 {
		t.Errorf("int = %v", got)
	}
	if got := numberOr("1 time", 30); got != "1 time" {
		t.Errorf("string = %v", got)
	}
	if got := numberOr("0", 30); got != 30 {
		t.Errorf("zero with default = %v, want 30", got)
	}
	if got := numberOr("0", nil); got != 0 {
		t.Errorf("zero without default = %#v, want 0", got)
	}
}

func TestZeroTimeAndServings(t *testing.T) {
	svc, dir := testService(t)
	testutil.WriteRecipe(t, dir, "boller", "", "title", "Boller", "time", "0", "servings", "0")

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items[0].Time != DefaultTime || items[0].Servings != DefaultServings {
		t.Errorf("summary time = %v, servings = %v", items[0].Time, items[0].Servings)
	}

	d, err := svc.Get(context.Background(), "boller")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Time != 0 {
		t.Errorf("detail time = %#v, want 0", d.Time)
	}
	if d.Servings != DefaultServings {
		t.Errorf("detail servings = %v", d.Servings)
	}
}

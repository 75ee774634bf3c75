package shoppinglist_test

import (
	"context"
	"encoding/json"
	"testing"

	"planeats/internal/core/grocery"
	"planeats/internal/core/mealplan"
	"planeats/internal/core/shoppinglist"
	"planeats/internal/infrastructure/store/memstore"
	"planeats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePlans struct {
	plan *mealplan.MealPlan
}

func (f *fakePlans) ShoppingList(_ context.Context, userID, id primitive.ObjectID) (*mealplan.MealPlan, error) {
	if f.plan == nil || f.plan.ID != id || f.plan.User != userID {
		return nil, mealplan.ErrMealPlanNotFound
	}
	return f.plan, nil
}

func newService(plan *mealplan.MealPlan) *shoppinglist.Service {
	return shoppinglist.NewService(memstore.NewShoppingListRepository(), &fakePlans{plan: plan})
}

func ptr[T any](v T) *T { return &v }

func TestNewItem_Category(t *testing.T) {
	tests := []struct {
		ingredient string
		want       grocery.Category
	}{
		{"Spinach", grocery.Produce},
		{"orange juice", grocery.Produce},
		{"Cold brew coffee", grocery.Beverages},
		{"Paper towels", grocery.Other},
	}
	for _, tt := range tests {
		t.Run(tt.ingredient, func(t *testing.T) {
			item, err := shoppinglist.NewItem(shoppinglist.ItemInput{Ingredient: tt.ingredient, Amount: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Category)
			assert.False(t, item.ID.IsZero())
		})
	}
}

func TestNewItem_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   shoppinglist.ItemInput
	}{
		{"blank ingredient", shoppinglist.ItemInput{Ingredient: "  "}},
		{"negative amount", shoppinglist.ItemInput{Ingredient: "Milk", Amount: -1}},
		{"negative cost", shoppinglist.ItemInput{Ingredient: "Milk", EstimatedCost: ptr(-0.5)}},
		{"unknown category", shoppinglist.ItemInput{Ingredient: "Milk", Category: "household"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shoppinglist.NewItem(tt.in)
			assert.True(t, common.IsValidationError(err), "got %v", err)
		})
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc := newService(nil)
	owner := primitive.NewObjectID()

	l, err := svc.Create(context.Background(), owner, shoppinglist.CreateInput{
		Name:  "  Weekend market ",
		Items: []shoppinglist.ItemInput{{Ingredient: "Eggs", Amount: 12}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Weekend market", l.Name)
	assert.Equal(t, shoppinglist.StatusActive, l.Status)
	assert.Equal(t, "USD", l.Budget.Currency)
	assert.NotNil(t, l.Stores)
	assert.Len(t, l.Items, 1)
	assert.Equal(t, grocery.Dairy, l.Items[0].Category)

	_, err = svc.Create(context.Background(), owner, shoppinglist.CreateInput{Name: ""})
	assert.True(t, common.IsValidationError(err), "got %v", err)
}

func TestGet_OtherUserSeesNotFound(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	l, err := svc.Create(ctx, owner, shoppinglist.CreateInput{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, primitive.NewObjectID(), l.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = svc.Delete(ctx, primitive.NewObjectID(), l.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := svc.Get(ctx, owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)
}

func TestItems_MarkAndRemove(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	l, err := svc.Create(ctx, owner, shoppinglist.CreateInput{
		Name: "Groceries",
		Items: []shoppinglist.ItemInput{
			{Ingredient: "Apples", Amount: 6},
			{Ingredient: "Bread", Amount: 1},
			{Ingredient: "Rice", Amount: 2, Unit: "kg"},
		},
	})
	require.NoError(t, err)

	l, err = svc.MarkItem(ctx, owner, l.ID, l.Items[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, l.PurchasedItems())
	assert.Equal(t, 33, l.CompletionPercentage())

	l, err = svc.MarkItem(ctx, owner, l.ID, l.Items[1].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 67, l.CompletionPercentage())

	l, err = svc.RemoveItem(ctx, owner, l.ID, l.Items[2].ID)
	require.NoError(t, err)
	assert.Len(t, l.Items, 2)
	assert.Equal(t, 100, l.CompletionPercentage())

	_, err = svc.RemoveItem(ctx, owner, l.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, common.ErrNotFound)

	l, err = svc.AddItem(ctx, owner, l.ID, shoppinglist.ItemInput{Ingredient: "Sparkling water", Amount: 2})
	require.NoError(t, err)
	assert.Len(t, l.Items, 3)
	assert.Equal(t, grocery.Beverages, l.Items[2].Category)
}

func TestUpdate(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	l, err := svc.Create(ctx, owner, shoppinglist.CreateInput{Name: "Party"})
	require.NoError(t, err)

	l, err = svc.Update(ctx, owner, l.ID, shoppinglist.UpdateInput{
		Status: ptr(shoppinglist.StatusCompleted),
		Budget: &shoppinglist.Budget{Total: ptr(50.0), Spent: 20, Currency: "EUR"},
	})
	require.NoError(t, err)
	assert.Equal(t, shoppinglist.StatusCompleted, l.Status)
	require.NotNil(t, l.RemainingBudget())
	assert.InDelta(t, 30.0, *l.RemainingBudget(), 1e-9)

	_, err = svc.Update(ctx, owner, l.ID, shoppinglist.UpdateInput{Status: ptr("lost")})
	assert.True(t, common.IsValidationError(err), "got %v", err)
}

func TestFromMealPlan(t *testing.T) {
	owner := primitive.NewObjectID()
	plan := &mealplan.MealPlan{
		ID:    primitive.NewObjectID(),
		User:  owner,
		Title: "High protein week",
		ShoppingList: []mealplan.ShoppingListItem{
			{Ingredient: "Chicken breast", Amount: 800, Unit: "g", Category: grocery.Meat},
			{Ingredient: "Greek yogurt", Amount: 2, Unit: "cup", Category: grocery.Dairy, Purchased: true},
		},
	}
	svc := newService(plan)
	ctx := context.Background()

	l, err := svc.FromMealPlan(ctx, owner, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, "High protein week - Shopping List", l.Name)
	require.Len(t, l.Items, 2)
	assert.Equal(t, grocery.Meat, l.Items[0].Category)
	assert.True(t, l.Items[1].Purchased)
	require.NotNil(t, l.Items[0].MealPlan)
	assert.Equal(t, plan.ID, *l.Items[0].MealPlan)
	assert.Equal(t, 50, l.CompletionPercentage())

	_, err = svc.FromMealPlan(ctx, primitive.NewObjectID(), plan.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_MarshalJSONAddsDerivedFields(t *testing.T) {
	l := shoppinglist.List{
		Name: "Derived",
		Items: []shoppinglist.Item{
			{Ingredient: "Milk", Purchased: true},
			{Ingredient: "Bread"},
		},
		Budget: shoppinglist.Budget{Spent: 5, Currency: "USD"},
	}

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Derived", out["name"])
	assert.EqualValues(t, 2, out["totalItems"])
	assert.EqualValues(t, 1, out["purchasedItems"])
	assert.EqualValues(t, 50, out["completionPercentage"])
	assert.Contains(t, out, "remainingBudget")
	assert.Nil(t, out["remainingBudget"])
}

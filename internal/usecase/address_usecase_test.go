package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressReq(line1 string) usecase.AddressCreateRequest {
	return usecase.AddressCreateRequest{Recipient: "Ken", Line1: line1, City: "Osaka", PostalCode: "530-0001", Country: "JP"}
}

func TestAddress_FirstIsDefault(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	u := s.user(t, "book@example.com")

	first, err := s.addresses.Create(ctx, u.ID, addressReq("1 Umeda"))
	require.NoError(t, err)
	second, err := s.addresses.Create(ctx, u.ID, addressReq("2 Namba"))
	require.NoError(t, err)

	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)
	assert.Equal(t, "Ken, 2 Namba, Osaka, 530-0001, JP", second.Formatted)

	require.NoError(t, s.addresses.SetDefault(ctx, u.ID, second.ID))
	list, err := s.addresses.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)
}

func TestAddress_Ownership(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	owner := s.user(t, "owner@example.com")
	other := s.user(t, "other@example.com")

	a, err := s.addresses.Create(ctx, owner.ID, addressReq("1 Umeda"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.addresses.Delete(ctx, other.ID, a.ID), usecase.ErrForbidden)
	assert.ErrorIs(t, s.addresses.SetDefault(ctx, other.ID, a.ID), usecase.ErrForbidden)
	assert.ErrorIs(t, s.addresses.Delete(ctx, owner.ID, 9999), usecase.ErrNotFound)

	require.NoError(t, s.addresses.Delete(ctx, owner.ID, a.ID))
	list, err := s.addresses.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddress_RequiredFields(t *testing.T) {
	s := newStack(t)
	u := s.user(t, "req@example.com")

	_, err := s.addresses.Create(context.Background(), u.ID, usecase.AddressCreateRequest{Recipient: "Ken", City: "Osaka"})
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
}

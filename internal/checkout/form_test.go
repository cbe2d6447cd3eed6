package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		FirstName:   "Aroha",
		LastName:    "Ngata",
		Email:       "aroha@example.co.nz",
		Phone:       "+64 21 555 0199",
		ProductName: "1oz Gold Bar - ABC Bullion",
		Quantity:    "2",
		TotalPrice:  "6400.00",
		Delivery:    "true",
	}
}

func TestValidate_AllFieldsPresent(t *testing.T) {
	res := Validate(validForm())

	require.True(t, res.OK())
	assert.Empty(t, res.FieldErrors)
	assert.Empty(t, res.ScrollTarget())
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Form)
		wantAnchor string
	}{
		{"missing_first_name", func(f *Form) { f.FirstName = "" }, AnchorFirstName},
		{"whitespace_first_name", func(f *Form) { f.FirstName = "   " }, AnchorFirstName},
		{"missing_last_name", func(f *Form) { f.LastName = "" }, AnchorLastName},
		{"missing_email", func(f *Form) { f.Email = "" }, AnchorEmail},
		{"missing_phone", func(f *Form) { f.Phone = "\t" }, AnchorPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			res := Validate(form)

			require.False(t, res.OK())
			require.Len(t, res.FieldErrors, 1, "exactly one error per missing field")
			assert.Equal(t, tt.wantAnchor, res.FieldErrors[0].Field)
			assert.Equal(t, tt.wantAnchor, res.ScrollTarget())
		})
	}
}

func TestValidate_AllRequiredMissing(t *testing.T) {
	form := validForm()
	form.FirstName = ""
	form.LastName = ""
	form.Email = ""
	form.Phone = ""

	res := Validate(form)

	require.False(t, res.OK())
	require.Len(t, res.FieldErrors, 4)
	assert.Equal(t, AnchorFirstName, res.ScrollTarget(), "scroll to the first error")
}

func TestValidate_NoProductIsAlwaysHardError(t *testing.T) {
	form := validForm()
	form.ProductName = ""

	res := Validate(form)

	require.False(t, res.OK())
	assert.True(t, res.NoProduct)
	assert.Equal(t, AnchorNoProduct, res.ScrollTarget(), "missing product outranks field errors")
}

func TestValidate_SupplierCheckboxRule(t *testing.T) {
	t.Run("supplier_product_unchecked_fails", func(t *testing.T) {
		form := validForm()
		form.SupplierStatus = SupplierStatusSupplier
		form.SupplierConfirmed = false

		res := Validate(form)

		require.False(t, res.OK())
		assert.True(t, res.SupplierUnconfirmed)
		assert.Empty(t, res.FieldErrors)
	})

	t.Run("supplier_product_checked_passes", func(t *testing.T) {
		form := validForm()
		form.SupplierStatus = SupplierStatusSupplier
		form.SupplierConfirmed = true

		require.True(t, Validate(form).OK())
	})

	t.Run("non_supplier_product_ignores_checkbox", func(t *testing.T) {
		form := validForm()
		form.SupplierStatus = "in-stock"
		form.SupplierConfirmed = false

		require.True(t, Validate(form).OK())
	})
}

func TestValidate_SupplierErrorIsSecondaryScrollTarget(t *testing.T) {
	form := validForm()
	form.SupplierStatus = SupplierStatusSupplier
	form.SupplierConfirmed = false
	form.Email = ""

	res := Validate(form)

	require.False(t, res.OK())
	assert.True(t, res.SupplierUnconfirmed)
	assert.Equal(t, AnchorEmail, res.ScrollTarget(),
		"supplier error must not be the scroll target when other errors exist")
}

func TestValidate_IsIdempotent(t *testing.T) {
	form := validForm()
	form.Phone = ""

	first := Validate(form)
	second := Validate(form)

	assert.Equal(t, first, second, "re-validation must not accumulate errors")
}

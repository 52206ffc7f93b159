package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del ajustador incremental de balance: cada escritura de transacción
// viaja con su incremento de balance en la misma unidad atómica.
// ──────────────────────────────────────────────────────────────────────────────

type billingFixture struct {
	uc        *appbilling.TransactionUseCase
	txRepo    *fakeTransactionRepo
	custRepo  *fakeCustomerRepo
	runner    *fakeRunner
	publisher *fakePublisher
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	txRepo := newFakeTransactionRepo()
	custRepo := newFakeCustomerRepo()
	runner := &fakeRunner{txRepo: txRepo, customerRepo: custRepo}
	publisher := &fakePublisher{}
	return &billingFixture{
		uc:        appbilling.NewTransactionUseCase(runner, txRepo, custRepo, publisher),
		txRepo:    txRepo,
		custRepo:  custRepo,
		runner:    runner,
		publisher: publisher,
	}
}

func (f *billingFixture) seedCustomer(t *testing.T) *entity.Customer {
	t.Helper()
	c := &entity.Customer{
		ID:        "c-1",
		OwnerName: "Kim Minji",
		DogName:   "Coco",
		Phone:     "010-1234-5678",
	}
	require.NoError(t, f.custRepo.Create(c))
	return c
}

func (f *billingFixture) balance(t *testing.T, id string) int64 {
	t.Helper()
	c, err := f.custRepo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.Balance
}

func incomeRequest(customerID string, price int64, qty int, paid int64) dto.TransactionRequest {
	return dto.TransactionRequest{
		Type:       entity.TransactionTypeIncome,
		CustomerID: customerID,
		Price:      price,
		Quantity:   qty,
		PaidAmount: paid,
		Category:   entity.CategoryDaycare,
		StartDate:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreate_IncomeEnlazadoAjustaBalance(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 2, 15_000))
	require.NoError(t, err)

	assert.Equal(t, int64(20_000), resp.BilledAmount)
	assert.Equal(t, int64(-5_000), resp.Diff)
	assert.Equal(t, int64(-5_000), f.balance(t, "c-1"),
		"balance += diff en la misma unidad atómica que el create")
}

func TestCreate_ExpenseNoTocaBalance(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	req := incomeRequest("c-1", 10_000, 1, 0)
	req.Type = entity.TransactionTypeExpense
	_, err := f.uc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.balance(t, "c-1"))
}

func TestCreate_SinClienteResolubleSeExcluyeDelBalance(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	req := incomeRequest("", 10_000, 1, 5_000)
	req.DogName = "Desconocido"
	req.Phone = "999"
	resp, err := f.uc.Create(context.Background(), req)
	require.NoError(t, err, "una transacción sin enlace no es un error")

	assert.Empty(t, resp.CustomerID)
	assert.Equal(t, int64(0), f.balance(t, "c-1"),
		"la brecha de calidad de datos se excluye silenciosamente del balance")
	got, err := f.txRepo.GetByID(resp.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "la transacción sí se persiste")
}

func TestCreate_ResuelvePorRespaldoYPersisteElEnlace(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	req := incomeRequest("", 10_000, 1, 5_000) // diff = -5000
	req.DogName = "coco"
	req.Phone = "01012345678"
	resp, err := f.uc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "c-1", resp.CustomerID,
		"el emparejador (perro, teléfono) repara el enlace y lo persiste")
	assert.Equal(t, int64(-5_000), f.balance(t, "c-1"))
}

func TestCreate_TipoInvalidoRechazado(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.uc.Create(context.Background(), dto.TransactionRequest{Type: "loan"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_PayloadDeCategoriaIncoherenteRechazado(t *testing.T) {
	f := newBillingFixture(t)

	req := incomeRequest("", 10_000, 1, 10_000)
	req.Category = entity.CategoryDaycare
	req.Hotel = &dto.HotelDetailDTO{Nights: 2}
	_, err := f.uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"el payload de hotel solo es válido en la categoría hotel")
}

// Fallo del incremento dentro de la tx ⇒ la operación aborta completa: ni
// transacción guardada ni balance movido (el modo de fallo principal que el
// contrato previene).
func TestCreate_FalloAtomicoNoDejaDeriva(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)
	f.custRepo.failIncrement = true

	_, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 1, 5_000))
	require.Error(t, err)

	assert.Equal(t, int64(0), f.balance(t, "c-1"))
	list, err := f.txRepo.List(repositoryFilterAll())
	require.NoError(t, err)
	assert.Empty(t, list, "la transacción no debe quedar guardada sin su incremento")
}

func TestUpdate_AplicaDeltaDeDiffs(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 2, 15_000)) // diff -5000
	require.NoError(t, err)

	edited := incomeRequest("c-1", 10_000, 2, 20_000) // diff 0
	_, err = f.uc.Update(context.Background(), resp.ID, edited)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.balance(t, "c-1"),
		"balance += diff(nueva) - diff(vieja)")
}

// P3: editar paidAmount X→Y equivale a borrar y recrear con paidAmount=Y.
func TestUpdate_EquivaleABorrarYRecrear(t *testing.T) {
	porEdicion := newBillingFixture(t)
	porEdicion.seedCustomer(t)
	resp, err := porEdicion.uc.Create(context.Background(), incomeRequest("c-1", 30_000, 1, 10_000))
	require.NoError(t, err)
	_, err = porEdicion.uc.Update(context.Background(), resp.ID, incomeRequest("c-1", 30_000, 1, 25_000))
	require.NoError(t, err)

	porReemplazo := newBillingFixture(t)
	porReemplazo.seedCustomer(t)
	resp2, err := porReemplazo.uc.Create(context.Background(), incomeRequest("c-1", 30_000, 1, 10_000))
	require.NoError(t, err)
	require.NoError(t, porReemplazo.uc.Delete(context.Background(), resp2.ID, true))
	_, err = porReemplazo.uc.Create(context.Background(), incomeRequest("c-1", 30_000, 1, 25_000))
	require.NoError(t, err)

	assert.Equal(t,
		porReemplazo.balance(t, "c-1"), porEdicion.balance(t, "c-1"),
		"editar y reemplazar deben producir el mismo balance final")
}

func TestUpdate_ReenlaceMueveElBalanceEntreClientes(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)
	require.NoError(t, f.custRepo.Create(&entity.Customer{
		ID: "c-2", OwnerName: "Park Jisoo", DogName: "Bomi", Phone: "010-9999-0000",
	}))

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 1, 5_000)) // diff -5000
	require.NoError(t, err)

	edited := incomeRequest("c-2", 10_000, 1, 5_000)
	_, err = f.uc.Update(context.Background(), resp.ID, edited)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.balance(t, "c-1"), "el cliente anterior queda revertido")
	assert.Equal(t, int64(-5_000), f.balance(t, "c-2"), "el nuevo cliente recibe el diff")
}

func TestUpdatePaidAmount_DeltaInline(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 50_000, 1, 0)) // diff -50000
	require.NoError(t, err)

	_, err = f.uc.UpdatePaidAmount(context.Background(), resp.ID, 50_000)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.balance(t, "c-1"),
		"balance += nuevoPaid - viejoPaid con el facturado intacto")
}

func TestUpdatePaidAmount_DeltaContraLoPersistido(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 50_000, 1, 10_000)) // diff -40000
	require.NoError(t, err)

	// Otra instancia confirma paid 10000→30000 (balance +20000) justo antes
	// de que abra la tx de esta edición.
	f.runner.beforeRun = func() {
		tx := f.txRepo.transactions[resp.ID]
		tx.PaidAmount = 30_000
		f.txRepo.transactions[resp.ID] = tx
		c := f.custRepo.customers["c-1"]
		c.Balance += 20_000
		f.custRepo.customers["c-1"] = c
	}

	_, err = f.uc.UpdatePaidAmount(context.Background(), resp.ID, 50_000)
	require.NoError(t, err)

	// La delta debe salir del estado persistido (50000-30000), no de una
	// instantánea previa a la tx (50000-10000).
	assert.Equal(t, int64(0), f.balance(t, "c-1"),
		"la versión vieja se lee con bloqueo dentro de la tx")
}

func TestDelete_RevierteLaVersionPersistida(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 50_000, 1, 10_000)) // diff -40000
	require.NoError(t, err)

	f.runner.beforeRun = func() {
		tx := f.txRepo.transactions[resp.ID]
		tx.PaidAmount = 50_000
		f.txRepo.transactions[resp.ID] = tx
		c := f.custRepo.customers["c-1"]
		c.Balance += 40_000
		f.custRepo.customers["c-1"] = c
	}

	require.NoError(t, f.uc.Delete(context.Background(), resp.ID, true))

	assert.Equal(t, int64(0), f.balance(t, "c-1"),
		"la reversión usa el diff de la fila bloqueada, no el de una lectura previa")
}

func TestDelete_RevierteElDiff(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 2, 15_000))
	require.NoError(t, err)
	require.Equal(t, int64(-5_000), f.balance(t, "c-1"))

	require.NoError(t, f.uc.Delete(context.Background(), resp.ID, true))

	assert.Equal(t, int64(0), f.balance(t, "c-1"),
		"el borrado revierte su efecto de balance antes de desaparecer")
}

func TestDelete_SinConfirmacionRechazado(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)
	resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 1, 10_000))
	require.NoError(t, err)

	err = f.uc.Delete(context.Background(), resp.ID, false)
	assert.ErrorIs(t, err, domain.ErrConfirmFlagMissing)
}

// P4: borrar T1..Tn en lote cambia el balance exactamente en -Σdiff(Ti).
func TestBatchDelete_Aditividad(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	var ids []string
	var sum int64
	paids := []int64{5_000, 20_000, 7_500}
	for _, paid := range paids {
		resp, err := f.uc.Create(context.Background(), incomeRequest("c-1", 10_000, 1, paid))
		require.NoError(t, err)
		ids = append(ids, resp.ID)
		sum += resp.Diff
	}
	require.Equal(t, sum, f.balance(t, "c-1"))

	// Orden intencionalmente distinto al de creación: los incrementos son
	// conmutativos.
	require.NoError(t, f.uc.BatchDelete(context.Background(), []string{ids[2], ids[0], ids[1]}, true))

	assert.Equal(t, int64(0), f.balance(t, "c-1"))
}

func TestBatchDelete_SinConfirmacionRechazado(t *testing.T) {
	f := newBillingFixture(t)
	err := f.uc.BatchDelete(context.Background(), []string{"x"}, false)
	assert.ErrorIs(t, err, domain.ErrConfirmFlagMissing)
}

func TestImport_BloquesSecuenciales(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	var reqs []dto.TransactionRequest
	for i := 0; i < appbilling.ImportChunkSize+1; i++ {
		reqs = append(reqs, incomeRequest("c-1", 1_000, 1, 1_000))
	}
	resp, err := f.uc.Import(context.Background(), dto.ImportRequest{Transactions: reqs})
	require.NoError(t, err)

	assert.Equal(t, appbilling.ImportChunkSize+1, resp.Imported)
	assert.Equal(t, 2, resp.Chunks, "501 filas ⇒ bloques de 500 y 1")
	assert.Equal(t, int64(0), f.balance(t, "c-1"), "cada fila pagó exacto: diff 0")
}

func TestImport_ReferenciaRotaSeExcluyeDelBalance(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	broken := incomeRequest("ghost-404", 10_000, 1, 2_000)
	resp, err := f.uc.Import(context.Background(), dto.ImportRequest{Transactions: []dto.TransactionRequest{
		incomeRequest("c-1", 10_000, 1, 10_000),
		broken,
	}})
	require.NoError(t, err, "una referencia rota nunca aborta el bloque")

	assert.Equal(t, 2, resp.Imported, "la fila rota se persiste igual")
	list, err := f.uc.List(repositoryFilterAll())
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, tx := range list {
		assert.NotEqual(t, "ghost-404", tx.CustomerID, "el enlace roto se descarta")
	}
	assert.Equal(t, int64(0), f.balance(t, "c-1"), "solo la fila enlazada cuenta; pagó exacto")
}

func TestImport_ReferenciaRotaSeReparaPorRespaldo(t *testing.T) {
	f := newBillingFixture(t)
	f.seedCustomer(t)

	req := incomeRequest("ghost-404", 10_000, 1, 4_000)
	req.DogName = "Coco"
	req.Phone = "010 1234 5678"
	resp, err := f.uc.Import(context.Background(), dto.ImportRequest{Transactions: []dto.TransactionRequest{req}})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Imported)
	list, err := f.uc.List(repositoryFilterAll())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c-1", list[0].CustomerID, "el respaldo (perro, teléfono) repara el enlace")
	assert.Equal(t, int64(-6_000), f.balance(t, "c-1"))
}

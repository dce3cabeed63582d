package application_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/photonwallet/photon/internal/core/application"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/stretchr/testify/require"
)

const (
	testBtcAddress = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	// 2500 uBTC (250_000 sat) invoice from the bolt11 test vectors
	testInvoice = "lnbc2500u1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypqdq5xysxxatsyp3k7enxv4jsxqzpuaztrnwngzn3kdzw5hydlzf03qdgm2hdq27cqv3agm2awhz5se903vruatfhq77w3ls4evs3ch9zw97j25emudupq63nyw24cg27h2rspfj9srp"
)

func newReceiveFlow(engine *fakeEngine) *application.ReceiveFlow {
	return application.NewReceiveFlow(
		engineGetter(engine),
		func() domain.Network { return domain.NetworkMainnet },
	)
}

func TestReceiveFlowAddresses(t *testing.T) {
	ctx := context.Background()

	t.Run("static addresses are fetched once", func(t *testing.T) {
		calls := map[string]int{}
		engine := newFakeEngine()
		engine.receiveFn = func(method domain.ReceiveMethod) (string, error) {
			switch method.(type) {
			case domain.SparkReceive:
				calls["spark"]++
				return "sp1staticaddress", nil
			case domain.BitcoinReceive:
				calls["bitcoin"]++
				return testBtcAddress, nil
			}
			return "", fmt.Errorf("unexpected method")
		}
		flow := newReceiveFlow(engine)

		for i := 0; i < 3; i++ {
			addr, err := flow.SparkAddress(ctx)
			require.NoError(t, err)
			require.Equal(t, "sp1staticaddress", addr)

			addr, err = flow.BitcoinAddress(ctx)
			require.NoError(t, err)
			require.Equal(t, testBtcAddress, addr)
		}
		require.Equal(t, 1, calls["spark"])
		require.Equal(t, 1, calls["bitcoin"])
	})

	t.Run("malformed engine addresses are rejected", func(t *testing.T) {
		engine := newFakeEngine()
		engine.receiveFn = func(method domain.ReceiveMethod) (string, error) {
			switch method.(type) {
			case domain.SparkReceive:
				return "not-a-spark-address", nil
			case domain.BitcoinReceive:
				return "bc1qnotanaddress", nil
			}
			return "", fmt.Errorf("unexpected method")
		}
		flow := newReceiveFlow(engine)

		_, err := flow.SparkAddress(ctx)
		require.Error(t, err)
		_, err = flow.BitcoinAddress(ctx)
		require.Error(t, err)
	})

	t.Run("reset drops the cache", func(t *testing.T) {
		calls := 0
		engine := newFakeEngine()
		engine.receiveFn = func(domain.ReceiveMethod) (string, error) {
			calls++
			return fmt.Sprintf("sp1address%d", calls), nil
		}
		flow := newReceiveFlow(engine)

		addr, err := flow.SparkAddress(ctx)
		require.NoError(t, err)
		require.Equal(t, "sp1address1", addr)

		flow.Reset()

		addr, err = flow.SparkAddress(ctx)
		require.NoError(t, err)
		require.Equal(t, "sp1address2", addr)
	})

	t.Run("invoices are minted fresh each time", func(t *testing.T) {
		calls := 0
		engine := newFakeEngine()
		engine.receiveFn = func(method domain.ReceiveMethod) (string, error) {
			req, ok := method.(domain.Bolt11Receive)
			require.True(t, ok)
			require.Equal(t, uint64(250_000), req.AmountSats)
			require.Equal(t, "coffee", req.Description)
			calls++
			return testInvoice, nil
		}
		flow := newReceiveFlow(engine)

		invoice, err := flow.CreateInvoice(ctx, 250_000, "coffee")
		require.NoError(t, err)
		require.Equal(t, testInvoice, invoice)
		_, err = flow.CreateInvoice(ctx, 250_000, "coffee")
		require.NoError(t, err)
		require.Equal(t, 2, calls)
	})

	t.Run("malformed engine invoices are rejected", func(t *testing.T) {
		engine := newFakeEngine()
		engine.receiveFn = func(domain.ReceiveMethod) (string, error) {
			return "lnbc1notaninvoice", nil
		}
		flow := newReceiveFlow(engine)

		_, err := flow.CreateInvoice(ctx, 2100, "coffee")
		require.Error(t, err)
	})
}

func TestReceiveFlowLightningAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions a random username on first use", func(t *testing.T) {
		engine := newFakeEngine()
		flow := newReceiveFlow(engine)

		info, err := flow.LightningAddress(ctx)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Len(t, engine.registered, 1)
		require.Len(t, info.Username, 6)

		// cached after provisioning
		again, err := flow.LightningAddress(ctx)
		require.NoError(t, err)
		require.Equal(t, info, again)
		require.Len(t, engine.registered, 1)
	})

	t.Run("existing registration is reused", func(t *testing.T) {
		engine := newFakeEngine()
		engine.lnAddress = &domain.LightningAddressInfo{
			Address:  "alice@wallet.test",
			Username: "alice",
		}
		flow := newReceiveFlow(engine)

		info, err := flow.LightningAddress(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice", info.Username)
		require.Empty(t, engine.registered)
	})

	t.Run("collisions are retried with a fresh username", func(t *testing.T) {
		engine := newFakeEngine()
		engine.registerRejects = 2
		flow := newReceiveFlow(engine)

		info, err := flow.LightningAddress(ctx)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Len(t, engine.registered, 1)
	})

	t.Run("provisioning gives up after bounded attempts", func(t *testing.T) {
		engine := newFakeEngine()
		engine.registerRejects = 3
		flow := newReceiveFlow(engine)

		_, err := flow.LightningAddress(ctx)
		require.Error(t, err)
		require.Empty(t, engine.registered)
	})

	t.Run("update rejects a taken username", func(t *testing.T) {
		engine := newFakeEngine()
		engine.taken["bob"] = true
		flow := newReceiveFlow(engine)

		_, err := flow.UpdateLightningAddress(ctx, "bob", "")
		require.ErrorIs(t, err, application.ErrAddressUnavailable)
	})

	t.Run("update replaces the registration", func(t *testing.T) {
		engine := newFakeEngine()
		flow := newReceiveFlow(engine)

		info, err := flow.UpdateLightningAddress(ctx, "carol", "tips")
		require.NoError(t, err)
		require.Equal(t, "carol", info.Username)
		require.Equal(t, "tips", info.Description)
		require.Equal(t, []string{"carol"}, engine.registered)
	})

	t.Run("update rejects invalid usernames", func(t *testing.T) {
		flow := newReceiveFlow(newFakeEngine())
		for _, username := range []string{"", "UPPER", "with space", "emoji✨"} {
			_, err := flow.UpdateLightningAddress(ctx, username, "")
			require.Error(t, err, username)
		}
	})

	t.Run("delete clears the cached registration", func(t *testing.T) {
		engine := newFakeEngine()
		flow := newReceiveFlow(engine)

		info, err := flow.LightningAddress(ctx)
		require.NoError(t, err)
		require.NotNil(t, info)

		require.NoError(t, flow.DeleteLightningAddress(ctx))
		require.Nil(t, engine.lnAddress)
	})
}

package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	steps := []Step{
		AccTitleStep{},
		AccRankStep{Title: "Immortal EU"},
		AccPriceStep{AccRankStep: AccRankStep{Title: "Immortal EU"}, Rank: "Immortal 2"},
		BoostRegionStep{FromRank: "Gold 2", ToRank: "Platinum 1"},
		BoostWishesStep{BoostRegionStep: BoostRegionStep{FromRank: "Gold 2", ToRank: "Platinum 1"}, Region: "EU"},
	}

	for _, s := range steps {
		raw, err := Encode(s)
		require.NoError(t, err, "step %s", s.Name())

		got, err := Decode(raw)
		require.NoError(t, err, "step %s", s.Name())
		assert.Equal(t, s, got)
	}
}

func TestDecodeKeepsCollectedFields(t *testing.T) {
	orig := AccConfirmStep{
		AccInfoStep: AccInfoStep{
			AccEmPassStep: AccEmPassStep{
				AccEmailStep: AccEmailStep{
					AccPassStep: AccPassStep{
						AccLoginStep: AccLoginStep{
							AccImageStep: AccImageStep{
								AccDescStep: AccDescStep{
									AccRegionStep: AccRegionStep{
										AccPriceStep: AccPriceStep{
											AccRankStep: AccRankStep{Title: "Radiant NA"},
											Rank:        "Radiant",
										},
										PriceRUB: 20000,
									},
									Region: accounts.RegionNA,
								},
								Description: "фулл доступ",
							},
							ImageURL: "https://example.com/shot.png",
						},
						Login: "rickx",
					},
					Password: "pass123",
				},
				Email: "rickx@mail.com",
			},
			EmailPassword: "mailpass",
		},
		AdditionalInfo: "коды: 1111 2222",
	}

	raw, err := Encode(orig)
	require.NoError(t, err)
	got, err := Decode(raw)
	require.NoError(t, err)

	cs, ok := got.(AccConfirmStep)
	require.True(t, ok)
	assert.Equal(t, orig, cs)

	d := cs.Draft(42)
	assert.Equal(t, "Radiant NA", d.Title)
	assert.Equal(t, "Radiant", d.Rank)
	assert.Equal(t, int64(20000), d.PriceRUB)
	assert.Equal(t, accounts.RegionNA, d.Region)
	assert.Equal(t, "rickx", d.Login)
	assert.Equal(t, "pass123", d.Password)
	assert.Equal(t, "rickx@mail.com", d.Email)
	assert.Equal(t, "mailpass", d.EmailPassword)
	assert.Equal(t, "коды: 1111 2222", d.AdditionalInfo)
	assert.Equal(t, int64(42), d.AddedBy)
}

func TestDecodeUnknownStep(t *testing.T) {
	_, err := Decode([]byte(`{"step":"acc:nope","data":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialog step")
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
}

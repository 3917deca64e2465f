package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStakeEventRecordDecode(t *testing.T) {
	line := `{"seq":7,"timestamp":1700000000,"kind":"program_added",` +
		`"pool":"0x0000000000000000000000000000000000000050",` +
		`"reserve_tokens":["0x00000000000000000000000000000000000000a1","0x00000000000000000000000000000000000000a2"],` +
		`"reward_shares":[700000,300000],"end_time":1702592000,"reward_rate":"250000000000000000"}`

	var got StakeEventRecord
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := StakeEventRecord{
		Seq:           7,
		Timestamp:     1700000000,
		Kind:          StakeEventProgramAdded,
		Pool:          "0x0000000000000000000000000000000000000050",
		ReserveTokens: []string{"0x00000000000000000000000000000000000000a1", "0x00000000000000000000000000000000000000a2"},
		RewardShares:  []uint32{700000, 300000},
		EndTime:       1702592000,
		RewardRate:    "250000000000000000",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decoded record mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestStakeEventRecordOmitsEmptyFields(t *testing.T) {
	rec := StakeEventRecord{Seq: 3, Timestamp: 1700000100, Kind: StakeEventClaim,
		Provider: "0x0000000000000000000000000000000000000001"}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"seq":3,"timestamp":1700000100,"kind":"claim",` +
		`"provider":"0x0000000000000000000000000000000000000001"}`
	if string(data) != want {
		t.Fatalf("encoded claim event:\ngot  %s\nwant %s", data, want)
	}
}

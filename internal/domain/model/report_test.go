package model_test

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/guildscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const rankingsFixture = `{
	"data": [
		{
			"fightID": 7,
			"encounter": {"id": 2902, "name": "Ulgrax the Devourer"},
			"kill": true,
			"roles": {
				"tanks":   {"name": "Tanks",   "characters": [{"id": 1, "name": "Stonewall", "rankPercent": 41.5, "bracketPercent": 50}]},
				"healers": {"name": "Healers", "characters": [{"id": 2, "name": "Mendra", "rankPercent": 88, "bracketPercent": 91.2}]},
				"dps":     {"name": "DPS",     "characters": [
					{"id": 3, "name": "Zap", "rankPercent": 99, "bracketPercent": 97},
					{"id": 4, "name": "Arrow", "rankPercent": 12.25, "bracketPercent": 20}
				]}
			}
		}
	]
}`

func TestReportDecoding(t *testing.T) {
	Convey("Given a report whose rankings arrive as an object", t, func() {
		payload := `{"code": "aBcD1234", "startTime": 1700000000000, "rankings": ` + rankingsFixture + `}`

		var report model.Report
		err := json.Unmarshal([]byte(payload), &report)

		Convey("Then every level should decode", func() {
			So(err, ShouldBeNil)
			So(*report.Code, ShouldEqual, "aBcD1234")
			So(report.Start(), ShouldEqual, time.UnixMilli(1700000000000).UTC())
			So(report.Rankings, ShouldNotBeNil)
			So(report.Rankings.Data, ShouldHaveLength, 1)

			fight := report.Rankings.Data[0]
			So(*fight.FightID, ShouldEqual, 7)
			So(*fight.Encounter.Name, ShouldEqual, "Ulgrax the Devourer")
			So(*fight.Kill, ShouldBeTrue)
		})

		Convey("Then roles should keep the provider's key order", func() {
			So(err, ShouldBeNil)
			roles := report.Rankings.Data[0].Roles
			So(roles, ShouldHaveLength, 3)
			So(roles[0].Name, ShouldEqual, "tanks")
			So(roles[1].Name, ShouldEqual, "healers")
			So(roles[2].Name, ShouldEqual, "dps")
		})

		Convey("Then characters should keep their order within a role", func() {
			dps := report.Rankings.Data[0].Roles[2]
			So(dps.Characters, ShouldHaveLength, 2)
			So(*dps.Characters[0].Name, ShouldEqual, "Zap")
			So(*dps.Characters[1].Name, ShouldEqual, "Arrow")
			So(*dps.Characters[1].RankPercent, ShouldEqual, 12.25)
		})
	})

	Convey("Given a report whose rankings arrive as a JSON string", t, func() {
		quoted, err := json.Marshal(rankingsFixture)
		So(err, ShouldBeNil)
		payload := `{"code": "zzz", "startTime": 1, "rankings": ` + string(quoted) + `}`

		var report model.Report
		err = json.Unmarshal([]byte(payload), &report)

		Convey("Then it should decode the same structure", func() {
			So(err, ShouldBeNil)
			So(report.Rankings.Data, ShouldHaveLength, 1)
			So(report.Rankings.Data[0].Roles, ShouldHaveLength, 3)
			So(report.Rankings.Data[0].Roles[0].Name, ShouldEqual, "tanks")
		})
	})

	Convey("Given a report with missing pieces", t, func() {
		payload := `{"code": "x", "rankings": {"data": [{"fightID": 1, "kill": false}]}}`

		var report model.Report
		err := json.Unmarshal([]byte(payload), &report)

		Convey("Then absent fields should stay nil", func() {
			So(err, ShouldBeNil)
			So(report.StartTime, ShouldBeNil)
			So(report.Start().IsZero(), ShouldBeTrue)
			fight := report.Rankings.Data[0]
			So(fight.Encounter, ShouldBeNil)
			So(fight.Roles, ShouldBeNil)
		})
	})

	Convey("Given a fight with an empty roles object", t, func() {
		var fight model.Fight
		err := json.Unmarshal([]byte(`{"fightID": 2, "roles": {}}`), &fight)

		Convey("Then roles should be present but empty", func() {
			So(err, ShouldBeNil)
			So(fight.Roles, ShouldNotBeNil)
			So(fight.Roles, ShouldHaveLength, 0)
		})
	})

	Convey("Given roles that are not an object", t, func() {
		var fight model.Fight
		err := json.Unmarshal([]byte(`{"fightID": 2, "roles": [1, 2]}`), &fight)

		Convey("Then decoding should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRolesMarshal(t *testing.T) {
	Convey("Given ordered roles", t, func() {
		roles := model.Roles{
			{Name: "healers", Characters: []model.Character{{Name: model.Ptr("Mendra")}}},
			{Name: "dps", Characters: []model.Character{}},
		}

		Convey("When encoding and decoding them", func() {
			data, err := json.Marshal(roles)
			So(err, ShouldBeNil)

			var back model.Roles
			err = json.Unmarshal(data, &back)

			Convey("Then order and names should survive", func() {
				So(err, ShouldBeNil)
				So(back, ShouldHaveLength, 2)
				So(back[0].Name, ShouldEqual, "healers")
				So(*back[0].Characters[0].Name, ShouldEqual, "Mendra")
				So(back[1].Name, ShouldEqual, "dps")
			})
		})
	})
}

package world

import "github.com/kvatch/worldserver/internal/actor"

// ToServer is a message a zone-connection task sends to the world task's
// mpsc queue (§4.4 "ToServer message handlers", §5 "cross-task references
// are never pointers; they are ClientId or ActorId plus a message send").
type ToServer interface{ isToServer() }

// NewClient registers a freshly accepted zone connection with the world.
type NewClient struct {
	ClientID actor.ClientId
	ActorID  actor.ActorId
}

func (NewClient) isToServer() {}

// ReadySpawnPlayer is emitted once InitRequest has been answered locally;
// it asks the world to create (if needed) the public instance and insert
// the player actor (§4.3 InitRequest rule, §4.4 handler).
type ReadySpawnPlayer struct {
	ClientID  actor.ClientId
	ActorID   actor.ActorId
	ContentID actor.ContentId
	Name      string
	ZoneID    uint16
	Position  Vec3
	Rotation  float32
}

func (ReadySpawnPlayer) isToServer() {}

// ZoneLoaded is emitted after FinishLoading (§4.3).
type ZoneLoaded struct {
	ClientID actor.ClientId
	ActorID  actor.ActorId
}

func (ZoneLoaded) isToServer() {}

// ActorMoved carries a player's authoritative movement update (§4.3
// UpdatePositionHandler, §4.4 handler, §8 property 7).
type ActorMoved struct {
	ActorID   actor.ActorId
	Position  Vec3
	Rotation  float32
	AnimType  uint8
	AnimState uint8
	JumpState uint8
}

func (ActorMoved) isToServer() {}

// ClientTriggerKind enumerates the ClientTrigger variants the world
// dispatches on (§4.4 "ClientTrigger(from_id, actor_id, trigger)").
type ClientTriggerKind uint8

const (
	TriggerTeleportQuery ClientTriggerKind = iota
	TriggerSummonMinion
	TriggerDespawnMinion
	TriggerSetTarget
	TriggerChangePose
	TriggerEmote
	TriggerToggleWeapon
	TriggerManuallyRemoveEffect
	TriggerPlaceWaymark
	TriggerClearWaymark
	TriggerClearAllWaymarks
	TriggerApplyWaymarkPreset
	TriggerGimmickJumpLanded
)

// ClientTrigger forwards a ClientTrigger IPC the zone connection didn't
// handle locally (§4.3 "either handle locally... or forward").
type ClientTrigger struct {
	FromClient actor.ClientId
	ActorID    actor.ActorId
	Kind       ClientTriggerKind

	// Populated per Kind; zero-valued fields are simply unused.
	AetheryteID  uint32 // TeleportQuery
	MinionID     uint32 // SummonMinion/DespawnMinion
	TargetID     actor.ActorId
	PoseID       uint8
	EmoteID      uint32
	EffectID     uint16 // ManuallyRemoveEffect
	EffectSource actor.ActorId
	WaymarkID    uint8
	WaymarkPos   Vec3
	PresetID     uint8
}

func (ClientTrigger) isToServer() {}

// Message forwards a chat line that wasn't consumed as a command (§4.3
// SendChatMessage).
type Message struct {
	FromClient actor.ClientId
	ActorID    actor.ActorId
	Text       string
}

func (Message) isToServer() {}

// JoinContent asks the world to move actor into a fresh instance for cfcID
// (§4.4, §8 "Zone change via content" scenario).
type JoinContent struct {
	FromClient               actor.ClientId
	ActorID                  actor.ActorId
	ContentFinderConditionID uint16
}

func (JoinContent) isToServer() {}

// LeaveContent asks the world to restore actor to the public instance it
// came from (§4.4, symmetric to JoinContent).
type LeaveContent struct {
	FromClient  actor.ClientId
	ActorID     actor.ActorId
	OldZoneID   uint16
	OldPosition Vec3
	OldRotation float32
}

func (LeaveContent) isToServer() {}

// Disconnected tells the world a zone client dropped, gracefully or not
// (§4.4, §4.2 "forced disconnect path; still commits player data").
type Disconnected struct {
	FromClient actor.ClientId
	ActorID    actor.ActorId
	Graceful   bool
}

func (Disconnected) isToServer() {}

// --- Party ops (§4.4) ---

type InvitePlayerToParty struct {
	FromClient      actor.ClientId
	FromActor       actor.ActorId
	TargetContentID actor.ContentId
}

func (InvitePlayerToParty) isToServer() {}

type InvitationResponse struct {
	FromClient      actor.ClientId
	ActorID         actor.ActorId
	SenderContentID actor.ContentId
	Accepted        bool
}

func (InvitationResponse) isToServer() {}

type AddPartyMember struct {
	PartyID   PartyID // 0 means "create a fresh party"
	Leader    Member
	NewMember Member
}

func (AddPartyMember) isToServer() {}

type PartyMemberChangedAreas struct {
	ContentID actor.ContentId
	NewZoneID uint16
}

func (PartyMemberChangedAreas) isToServer() {}

type PartyChangeLeader struct {
	FromClient   actor.ClientId
	ContentID    actor.ContentId
	NewLeaderCID actor.ContentId
}

func (PartyChangeLeader) isToServer() {}

type PartyMemberLeft struct {
	ContentID actor.ContentId
}

func (PartyMemberLeft) isToServer() {}

type PartyDisband struct {
	FromClient actor.ClientId
	ContentID  actor.ContentId
}

func (PartyDisband) isToServer() {}

type PartyMemberKick struct {
	FromClient actor.ClientId
	ContentID  actor.ContentId
	TargetCID  actor.ContentId
}

func (PartyMemberKick) isToServer() {}

type PartyMemberOffline struct {
	ContentID actor.ContentId
}

func (PartyMemberOffline) isToServer() {}

type PartyMemberReturned struct {
	ContentID    actor.ContentId
	ZoneClientID actor.ClientId
	ChatClientID actor.ClientId
}

func (PartyMemberReturned) isToServer() {}

// --- Strategy board (§4.4 two-phase protocol) ---

type ShareStrategyBoard struct {
	FromClient      actor.ClientId
	ContentID       actor.ContentId
	ClientContentID actor.ContentId // 0 = distribute only, non-zero = enter realtime
	Board           []byte
}

func (ShareStrategyBoard) isToServer() {}

type StrategyBoardUpdate struct {
	FromClient actor.ClientId
	ContentID  actor.ContentId
	Payload    []byte
}

func (StrategyBoardUpdate) isToServer() {}

type RealtimeStrategyBoardFinished struct {
	FromClient actor.ClientId
	ContentID  actor.ContentId
}

func (RealtimeStrategyBoardFinished) isToServer() {}

// EnterZoneJump forwards a ZoneJump IPC (§4.3): the player stepped through
// an exit box into another zone's public instance.
type EnterZoneJump struct {
	FromClient actor.ClientId
	ActorID    actor.ActorId
	ZoneID     uint16
	Position   Vec3
}

func (EnterZoneJump) isToServer() {}

// FatalError is the only message that unwinds the world loop (§7
// "Fatal: only a dedicated ToServer::FatalError returns from the world
// loop").
type FatalError struct{ Err error }

func (FatalError) isToServer() {}

// QueueDuties publishes a duty-finder registration to the world (§4.3
// QueueDuties).
type QueueDuties struct {
	FromClient actor.ClientId
	ActorID    actor.ActorId
	ContentIDs []uint16
	Flags      uint32
}

func (QueueDuties) isToServer() {}

// FromServer is a message the world task fans out to a specific zone
// connection's per-client channel, to be rendered into IPC (§4.3 "Outbound
// rendering").
type FromServer interface{ isFromServer() }

// ActorSpawn asks the connection to allocate a spawn_index and emit
// PlayerSpawn/NpcSpawn (§4.3).
type ActorSpawn struct {
	Snapshot Actor
}

func (ActorSpawn) isFromServer() {}

// DeleteActor asks the connection to release its allocator slot and emit
// DeleteActor (§4.3).
type DeleteActor struct {
	ActorID    actor.ActorId
	SpawnIndex uint16
}

func (DeleteActor) isFromServer() {}

// ActorMove is the per-tick broadcast of an NPC or player's new pose
// (§4.4.1, §8 "Movement broadcast" scenario).
type ActorMove struct {
	Source    actor.ActorId
	Position  Vec3
	Rotation  float32
	AnimSpeed uint8
}

func (ActorMove) isFromServer() {}

// ChangeZone drives the full zone-transition outbound sequence (§4.3
// "Outbound rendering" ChangeZone example).
type ChangeZone struct {
	ZoneID                   uint16
	ContentFinderConditionID uint16
	Weather                  uint16
	Position                 Vec3
	Rotation                 float32
	LuaZone                  string
	InitialLogin             bool
	DirectorVars             map[string]int32
}

func (ChangeZone) isFromServer() {}

// HaterList and EnmityList are the two per-target hate broadcasts (§4.4.2).
type HaterList struct {
	Target actor.ActorId
	List   []HateEntry
}

func (HaterList) isFromServer() {}

type EnmityList struct {
	Target actor.ActorId
	List   []HateEntry
}

func (EnmityList) isFromServer() {}

// IncrementRestedExp fires once per sanctuary rested-exp cadence (§4.4.3,
// §8 property 8).
type IncrementRestedExp struct{}

func (IncrementRestedExp) isFromServer() {}

// ExecuteGimmickJump is sent only to the jumping player (§4.4.3, §8
// "Gimmick jump" scenario).
type ExecuteGimmickJump struct {
	To   Vec3
	Kind GimmickKind
}

func (ExecuteGimmickJump) isFromServer() {}

// PlaySharedGroupTimeline is broadcast to viewers of the gimmick's eobj
// (§4.4.3).
type PlaySharedGroupTimeline struct {
	EObj     actor.ActorId
	Timeline uint32
}

func (PlaySharedGroupTimeline) isFromServer() {}

// ControlEventKind names the actor-control reply/broadcast family a
// ClientTrigger dispatch produces (§4.4 "dispatch by variant ... broadcast
// corresponding ActorControl in-range").
type ControlEventKind uint8

const (
	ControlTeleportStart ControlEventKind = iota
	ControlSummonMinion
	ControlDespawnMinion
	ControlSetTarget
	ControlChangePose
	ControlEmote
	ControlToggleWeapon
	ControlPlaceWaymark
	ControlClearWaymark
	ControlClearAllWaymarks
	ControlApplyWaymarkPreset
)

// ActorControlEvent is the rendered form of a dispatched ClientTrigger: an
// ActorControl about Source broadcast to viewers, or an ActorControlSelf
// when SelfOnly is set (TeleportStart goes only to the querying player).
type ActorControlEvent struct {
	Source   actor.ActorId
	Kind     ControlEventKind
	Params   [4]uint32
	SelfOnly bool
}

func (ActorControlEvent) isFromServer() {}

// EnteredInstanceEntranceRange fires the first tick a player steps into an
// entrance-tagged map range (§4.4.3).
type EnteredInstanceEntranceRange struct {
	InstanceID InstanceID
}

func (EnteredInstanceEntranceRange) isFromServer() {}

// ConditionFlag names one bit of PlayerData's conditions bitmask (§3).
type ConditionFlag uint8

const (
	ConditionOccupiedInEvent ConditionFlag = iota
	ConditionOccupiedInQuestEvent
	ConditionInDuelingArea
	ConditionLoggingOut
	ConditionExecutingGatheringAction
)

// ConditionChanged reports a condition bit flip, used for InDuelingArea
// churn (§4.4.3, §8 property 5) and the gathering-replay triggers (§4.3).
type ConditionChanged struct {
	Condition ConditionFlag
	Value     bool
}

func (ConditionChanged) isFromServer() {}

// UpdateHpMpTp is the regen broadcast (§4.4 step 5).
type UpdateHpMpTp struct {
	ActorID              actor.ActorId
	HP, MaxHP, MP, MaxMP uint32
}

func (UpdateHpMpTp) isFromServer() {}

// PartyUpdateStatus names the party event a PartyUpdate broadcast reports.
type PartyUpdateStatus uint8

const (
	PartyStatusJoinParty PartyUpdateStatus = iota
	PartyStatusLeaveParty
	PartyStatusDisband
	PartyStatusChangeLeader
	PartyStatusKick
	PartyStatusOffline
	PartyStatusReturned
	PartyStatusChangedAreas
)

// PartyUpdate and PartyList are the two party broadcasts (§4.4, §8 "Party
// invite accept" scenario).
type PartyUpdate struct {
	Status  PartyUpdateStatus
	Entries []VisibleEntry
}

func (PartyUpdate) isFromServer() {}

type PartyList struct {
	Entries []VisibleEntry
}

func (PartyList) isFromServer() {}

// SetPartyChatChannel is pushed to each member's chat connection (§4.4).
type SetPartyChatChannel struct {
	ChannelID uint32
}

func (SetPartyChatChannel) isFromServer() {}

// PartyInvite is forwarded to the invitee (§8 "Party invite accept"
// scenario).
type PartyInvite struct {
	SenderContentID actor.ContentId
	SenderName      string
}

func (PartyInvite) isFromServer() {}

// RejoinPartyAfterDisconnect fires when NewClient matches an existing
// party member by actor id (§4.4 NewClient handler).
type RejoinPartyAfterDisconnect struct{}

func (RejoinPartyAfterDisconnect) isFromServer() {}

// StrategyBoardFanout forwards a strategy board payload to every party
// member except host (§4.4 two-phase protocol).
type StrategyBoardFanout struct {
	Board    []byte
	Realtime bool
}

func (StrategyBoardFanout) isFromServer() {}

// ServerNoticeMessage is a user-visible chat-log failure notice (§7).
type ServerNoticeMessage struct {
	Text string
}

func (ServerNoticeMessage) isFromServer() {}
